package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillup-go/internal/auth"
	"skillup-go/internal/config"
	"skillup-go/internal/mediator"
	"skillup-go/internal/repository"
	"skillup-go/internal/services"
	"skillup-go/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, loginLimit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authCfg := config.AuthConfig{
		JWTSecret:       "router-test-secret",
		Issuer:          "skillup-test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
	}
	tokens := auth.NewTokenService(authCfg)
	store := repository.NewStore(testutil.NewDB(t))
	m := mediator.New(zap.NewNop())
	services.Register(m, services.Deps{
		Log:    zap.NewNop(),
		Store:  store,
		Tokens: tokens,
		Auth:   authCfg,
		Email:  services.NewEmailService(zap.NewNop(), store),
	})
	return Setup(Deps{
		Log:      zap.NewNop(),
		Server:   config.ServerConfig{LoginRateLimit: loginLimit},
		Mediator: m,
		Tokens:   tokens,
	})
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthSetsHeaders(t *testing.T) {
	r := newTestRouter(t, 5)
	w := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t, 10)

	w := do(r, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "grace@example.com", "password": "C0bol!rocks", "firstName": "Grace", "lastName": "Hopper",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "grace@example.com", "password": "C0bol!rocks", "firstName": "Grace", "lastName": "Hopper",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "grace@example.com", "password": "C0bol!rocks"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login services.AuthResult
	decode(t, w, &login)
	require.NotEmpty(t, login.AccessToken)

	w = do(r, http.MethodGet, "/api/users/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile services.UserProfile
	decode(t, w, &profile)
	assert.Equal(t, "grace@example.com", profile.Email)

	w = do(r, http.MethodGet, "/api/users/me/statistics", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats services.UserStatistics
	decode(t, w, &stats)
	assert.Zero(t, stats.TotalLearningPaths)
	assert.NotNil(t, stats.CategoryProgress)

	w = do(r, http.MethodGet, "/api/dashboard/calendar?year=2024&month=2", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var calendar services.LearningCalendar
	decode(t, w, &calendar)
	assert.Len(t, calendar.Days, 29)

	w = do(r, http.MethodGet, "/api/dashboard/calendar?month=13", login.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/creator/students", login.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/api/admin/analytics", login.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/api/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorsMapToStatus(t *testing.T) {
	r := newTestRouter(t, 10)
	w := do(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alan@example.com", "password": "En!gma42", "firstName": "Alan", "lastName": "Turing",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alan@example.com", "password": "En!gma42"})
	require.Equal(t, http.StatusOK, w.Code)
	var login services.AuthResult
	decode(t, w, &login)

	w = do(r, http.MethodPost, "/api/assessments/abc/start", login.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/assessments/77/start", login.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "assessment 77 not found", body["error"])

	w = do(r, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/learning-paths", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	r := newTestRouter(t, 2)
	creds := map[string]string{"email": "nobody@example.com", "password": "x"}
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/auth/login", "", creds).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/auth/login", "", creds).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/auth/login", "", creds).Code)
}
