package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/platform/storage"
)

type stubPhotoStore struct{}

func (stubPhotoStore) Save(context.Context, string, string, io.Reader) (string, error) {
	return "", nil
}

func withPhotoStoreFactory(t *testing.T, fn func(context.Context, *logger.Logger, storage.Config) (storage.PhotoStore, error)) {
	t.Helper()
	prev := newPhotoStore
	newPhotoStore = fn
	t.Cleanup(func() { newPhotoStore = prev })
}

func TestResolvePhotoStoreInvalidMode(t *testing.T) {
	called := false
	withPhotoStoreFactory(t, func(context.Context, *logger.Logger, storage.Config) (storage.PhotoStore, error) {
		called = true
		return stubPhotoStore{}, nil
	})

	_, err := resolvePhotoStore(context.Background(), logger.Nop(), storage.Config{Mode: "s3"})

	var got *PhotoStoreBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected PhotoStoreBootstrapError, got=%T", err)
	}
	if got.Code != PhotoStoreBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q", PhotoStoreBootstrapErrorInvalidMode, got.Code)
	}
	if called {
		t.Fatalf("factory should not run for an invalid mode")
	}
}

func TestResolvePhotoStoreMissingBucket(t *testing.T) {
	_, err := resolvePhotoStore(context.Background(), logger.Nop(), storage.Config{Mode: storage.ModeGCS})
	if code := photoStoreBootstrapErrorCode(err); code != PhotoStoreBootstrapErrorMissingBucket {
		t.Fatalf("code: want=%q got=%q", PhotoStoreBootstrapErrorMissingBucket, code)
	}
}

func TestResolvePhotoStoreConnectFailed(t *testing.T) {
	cause := errors.New("credentials not found")
	withPhotoStoreFactory(t, func(context.Context, *logger.Logger, storage.Config) (storage.PhotoStore, error) {
		return nil, cause
	})

	_, err := resolvePhotoStore(context.Background(), logger.Nop(), storage.Config{Mode: "GCS", GCSBucket: "photos"})

	if code := photoStoreBootstrapErrorCode(err); code != PhotoStoreBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", PhotoStoreBootstrapErrorConnectFailed, code)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got=%v", err)
	}
}

func TestResolvePhotoStoreDefaultsToLocal(t *testing.T) {
	var seen storage.Config
	withPhotoStoreFactory(t, func(_ context.Context, _ *logger.Logger, cfg storage.Config) (storage.PhotoStore, error) {
		seen = cfg
		return stubPhotoStore{}, nil
	})

	store, err := resolvePhotoStore(context.Background(), logger.Nop(), storage.Config{LocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("resolvePhotoStore: %v", err)
	}
	if store == nil || seen.Mode != storage.ModeLocal {
		t.Fatalf("expected local store, mode=%q", seen.Mode)
	}
}
