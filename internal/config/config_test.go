package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	c := Defaults()
	assert.Equal(t, "5050", c.Server.Port)
	assert.Equal(t, "local", c.Storage.Driver)
	assert.Equal(t, 3, c.Feedback.MaxAttempts)
	assert.Equal(t, time.Hour, c.Auth.AccessTokenTTL)
	assert.Contains(t, c.Storage.AllowedTypes, "pdf")
}

func TestInitReadsFileAndEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	yaml := "server:\n  port: \"9000\"\ndatabase:\n  dbname: lms\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SKILLUP_AUTH_JWT_SECRET", "from-env")

	c, err := Init(root, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Server.Port)
	assert.Equal(t, "lms", c.Database.DBName)
	assert.Equal(t, "from-env", c.Auth.JWTSecret)
	assert.Same(t, c, Get())
}

func TestInitReloadsOnFileChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	file := filepath.Join(root, "config", "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  max_file_size: 100\n"), 0o644))

	c, err := Init(root, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.Storage.MaxFileSize)

	require.NoError(t, os.WriteFile(file, []byte("storage:\n  max_file_size: 200\n"), 0o644))
	assert.Eventually(t, func() bool {
		return Get().Storage.MaxFileSize == 200
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, int64(100), c.Storage.MaxFileSize)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=d port=1 sslmode=disable TimeZone=UTC", d.DSN())
}
