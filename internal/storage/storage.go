// Package storage keeps uploaded file bodies on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"skillup-go/internal/config"

	"go.uber.org/zap"
)

var ErrNotExist = errors.New("stored object does not exist")

// Backend stores file bodies by key.
type Backend interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New returns the backend selected by cfg.Driver.
func New(cfg config.StorageConfig, log *zap.Logger) (Backend, error) {
	switch cfg.Driver {
	case "", "local":
		log.Info("Using local file storage", zap.String("dir", cfg.LocalDir))
		return NewLocal(cfg.LocalDir)
	case "s3":
		log.Info("Using S3 file storage", zap.String("bucket", cfg.S3Bucket), zap.String("region", cfg.S3Region))
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
