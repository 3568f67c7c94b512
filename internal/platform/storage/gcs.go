package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type gcsPhotoStore struct {
	log    *logger.Logger
	client *gcs.Client
	bucket string
}

// NewGCSPhotoStore uses application default credentials; STORAGE_EMULATOR_HOST is
// honoured by the client library.
func NewGCSPhotoStore(ctx context.Context, log *logger.Logger, bucket string, opts ...option.ClientOption) (PhotoStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing PHOTO_GCS_BUCKET")
	}
	opts = append(opts, option.WithScopes(gcs.ScopeReadWrite))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &gcsPhotoStore{
		log:    log.With("store", "GCSPhotoStore", "bucket", bucket),
		client: client,
		bucket: bucket,
	}, nil
}

func (s *gcsPhotoStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", name, err)
	}
	s.log.Debug("photo uploaded", "object", name)
	return name, nil
}
