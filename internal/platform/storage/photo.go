package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCS   Mode = "gcs"
)

// PhotoStore persists uploaded bootcamp photos.
type PhotoStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

type Config struct {
	Mode      Mode
	LocalDir  string
	GCSBucket string
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (PhotoStore, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode)))) {
	case ModeGCS:
		return NewGCSPhotoStore(ctx, log, cfg.GCSBucket)
	case ModeLocal, "":
		return NewLocalPhotoStore(log, cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown photo storage mode %q", cfg.Mode)
	}
}

type localPhotoStore struct {
	log *logger.Logger
	dir string
}

func NewLocalPhotoStore(log *logger.Logger, dir string) (PhotoStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "./public/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localPhotoStore{log: log.With("store", "LocalPhotoStore"), dir: dir}, nil
}

func (s *localPhotoStore) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid photo name")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close photo: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("move photo: %w", err)
	}
	s.log.Debug("photo stored", "path", dst)
	return name, nil
}
