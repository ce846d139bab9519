package storage

import (
	"context"
	"fmt"
	"sync"

	"audioscribe/internal/config"
	"audioscribe/internal/gcpauth"
	"audioscribe/internal/model"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// GCS implements Uploader on Google Cloud Storage. The client is created on
// first use so missing credentials surface as a per-request configuration
// error instead of a startup failure. A failed initialization is retried on
// the next call.
type GCS struct {
	cfg *config.Config
	log zerolog.Logger

	mu     sync.Mutex
	client *gcs.Client
	bucket string
}

// NewGCS creates a lazily-initialized GCS uploader.
func NewGCS(cfg *config.Config, log zerolog.Logger) *GCS {
	return &GCS{cfg: cfg, log: log.With().Str("component", "gcs").Logger()}
}

func (s *GCS) handle(ctx context.Context) (*gcs.Client, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, s.bucket, nil
	}

	sa, bucket, err := s.cfg.StorageCredentials()
	if err != nil {
		return nil, "", err
	}
	// The client and its token source outlive this request.
	base := context.WithoutCancel(ctx)
	creds, err := gcpauth.Credentials(base, sa)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	client, err := gcs.NewClient(base, option.WithCredentials(creds))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create storage client: %w", err)
	}

	s.log.Info().Str("bucket", bucket).Str("project", sa.ProjectID).Msg("storage client initialized")
	s.client = client
	s.bucket = bucket
	return client, bucket, nil
}

// Upload writes data in a single request so a failed attempt never leaves a
// partially written object behind.
func (s *GCS) Upload(ctx context.Context, key, contentType string, data []byte) (model.StoredObjectRef, error) {
	client, bucket, err := s.handle(ctx)
	if err != nil {
		return model.StoredObjectRef{}, err
	}

	w := client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.ChunkSize = 0

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return model.StoredObjectRef{}, classifyWriteError(err)
	}
	if err := w.Close(); err != nil {
		return model.StoredObjectRef{}, classifyWriteError(err)
	}

	return model.StoredObjectRef{Bucket: bucket, Key: key}, nil
}

// Close releases the underlying client, if one was created.
func (s *GCS) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func classifyWriteError(err error) error {
	if gcpauth.IsCredentialError(err) {
		return fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	return fmt.Errorf("storage write failed: %w", err)
}

var _ Uploader = (*GCS)(nil)
