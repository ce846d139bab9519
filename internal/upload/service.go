// Package upload validates incoming audio files and writes them to object
// storage with bounded retries.
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"audioscribe/internal/apperr"
	"audioscribe/internal/model"
	"audioscribe/internal/observability"
	"audioscribe/internal/resilience"
	"audioscribe/internal/storage"

	"github.com/rs/zerolog"
)

const credentialFailureMessage = "Storage authentication failed. Check the service account credentials."

// Options configures a Service.
type Options struct {
	MaxBytes       int64
	MaxAttempts    int
	InitialBackoff time.Duration

	// Sleep overrides the wait between attempts (tests).
	Sleep func(ctx context.Context, d time.Duration) error
}

// Service is the upload orchestrator.
type Service struct {
	uploader storage.Uploader
	keys     *storage.KeyGenerator
	opts     Options
	log      zerolog.Logger
}

// Outcome describes a completed upload.
type Outcome struct {
	Ref         model.StoredObjectRef
	Attempts    int
	Size        int64
	ContentType string
}

// NewService creates an upload orchestrator writing through uploader.
func NewService(uploader storage.Uploader, keys *storage.KeyGenerator, opts Options, log zerolog.Logger) *Service {
	if keys == nil {
		keys = storage.NewKeyGenerator()
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Service{
		uploader: uploader,
		keys:     keys,
		opts:     opts,
		log:      log.With().Str("component", "upload").Logger(),
	}
}

// MaxBytes returns the size ceiling enforced by Validate.
func (s *Service) MaxBytes() int64 { return s.opts.MaxBytes }

// Validate checks the declared media type and size without side effects.
func (s *Service) Validate(req model.UploadRequest) error {
	if !model.IsSupportedMediaType(req.ContentType) {
		return apperr.Validationf("Unsupported file type %q. Supported: MP3, MP4, WAV, M4A, FLAC, OGG, WEBM.", req.ContentType).
			WithDetail("type", req.ContentType)
	}
	if req.Size < 0 {
		return apperr.Validation("Invalid file size.")
	}
	if req.Size > s.opts.MaxBytes {
		return apperr.Validationf("File size exceeds the %d MB limit.", s.opts.MaxBytes>>20).
			WithDetail("size", req.Size).
			WithDetail("limit", s.opts.MaxBytes)
	}
	return nil
}

// Upload validates req and writes it under a freshly generated key. Every
// retry reuses that key, so a retried write replaces rather than duplicates.
func (s *Service) Upload(ctx context.Context, req model.UploadRequest) (*Outcome, error) {
	if err := s.Validate(req); err != nil {
		observability.RecordUpload(string(apperr.CodeValidation), 0, req.Size)
		return nil, err
	}

	contentType := model.NormalizeMediaType(req.ContentType)
	key := s.keys.Generate(req.FileName, contentType)
	log := s.log.With().Str("key", key).Int64("size", req.Size).Logger()

	policy := resilience.Policy{
		MaxAttempts: s.opts.MaxAttempts,
		Backoff:     resilience.ExponentialBackoff(s.opts.InitialBackoff, s.opts.MaxAttempts),
		Retryable:   isRetryableWrite,
		Sleep:       s.opts.Sleep,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("storage write failed, retrying")
		},
	}

	ref, attempts, err := resilience.Do(ctx, policy, func(ctx context.Context, _ int) (model.StoredObjectRef, error) {
		return s.uploader.Upload(ctx, key, contentType, req.Data)
	})
	if err != nil {
		appErr := s.classify(err, attempts)
		log.Error().Err(err).Int("attempts", attempts).Str("code", string(appErr.Code)).Msg("upload failed")
		observability.RecordUpload(string(appErr.Code), attempts, req.Size)
		return nil, appErr
	}

	log.Info().Str("uri", ref.URI()).Int("attempts", attempts).Msg("upload stored")
	observability.RecordUpload("ok", attempts, req.Size)
	return &Outcome{
		Ref:         ref,
		Attempts:    attempts,
		Size:        req.Size,
		ContentType: contentType,
	}, nil
}

func (s *Service) classify(err error, attempts int) *apperr.Error {
	if appErr, ok := apperr.As(err); ok {
		return appErr
	}
	if errors.Is(err, storage.ErrCredentials) {
		return apperr.Configuration(credentialFailureMessage).WithCause(err)
	}
	return apperr.TransientIO(fmt.Sprintf("Failed to upload file to storage after %d attempts.", attempts)).
		WithCause(err).
		WithDetail("attempts", attempts)
}

func isRetryableWrite(err error) bool {
	if errors.Is(err, storage.ErrCredentials) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	_, isAppErr := apperr.As(err)
	return !isAppErr
}
