package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/platform/storage"
)

var newPhotoStore = storage.New

type PhotoStoreBootstrapErrorCode string

const (
	PhotoStoreBootstrapErrorInvalidMode   PhotoStoreBootstrapErrorCode = "invalid_mode"
	PhotoStoreBootstrapErrorMissingBucket PhotoStoreBootstrapErrorCode = "missing_bucket"
	PhotoStoreBootstrapErrorConnectFailed PhotoStoreBootstrapErrorCode = "connect_failed"
)

type PhotoStoreBootstrapError struct {
	Code   PhotoStoreBootstrapErrorCode
	Mode   string
	Bucket string
	Cause  error
}

func (e *PhotoStoreBootstrapError) Error() string {
	if e == nil {
		return "photo storage bootstrap failed"
	}
	return fmt.Sprintf(
		"photo storage bootstrap failed (code=%s mode=%q bucket=%q): %v",
		e.Code,
		e.Mode,
		e.Bucket,
		e.Cause,
	)
}

func (e *PhotoStoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func resolvePhotoStore(ctx context.Context, log *logger.Logger, cfg storage.Config) (storage.PhotoStore, error) {
	mode := storage.Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if mode == "" {
		mode = storage.ModeLocal
	}
	cfg.Mode = mode

	if err := precheckPhotoStore(cfg); err != nil {
		log.Error("Photo storage selection failed", "mode", mode, "bucket", cfg.GCSBucket, "error_code", err.Code, "error", err)
		return nil, err
	}

	log.Info("Selecting photo storage", "mode", mode, "bucket", cfg.GCSBucket, "dir", cfg.LocalDir)
	store, err := newPhotoStore(ctx, log, cfg)
	if err != nil {
		classified := &PhotoStoreBootstrapError{
			Code:   PhotoStoreBootstrapErrorConnectFailed,
			Mode:   string(mode),
			Bucket: cfg.GCSBucket,
			Cause:  err,
		}
		log.Error("Photo storage bootstrap failed", "mode", mode, "error_code", classified.Code, "error", err)
		return nil, classified
	}
	return store, nil
}

func precheckPhotoStore(cfg storage.Config) *PhotoStoreBootstrapError {
	switch cfg.Mode {
	case storage.ModeLocal:
		return nil
	case storage.ModeGCS:
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return &PhotoStoreBootstrapError{
				Code:  PhotoStoreBootstrapErrorMissingBucket,
				Mode:  string(cfg.Mode),
				Cause: errors.New("PHOTO_GCS_BUCKET is required in gcs mode"),
			}
		}
		return nil
	default:
		return &PhotoStoreBootstrapError{
			Code:  PhotoStoreBootstrapErrorInvalidMode,
			Mode:  string(cfg.Mode),
			Cause: fmt.Errorf("unsupported photo storage mode %q", cfg.Mode),
		}
	}
}

func photoStoreBootstrapErrorCode(err error) PhotoStoreBootstrapErrorCode {
	var bootstrapErr *PhotoStoreBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return PhotoStoreBootstrapErrorConnectFailed
}
