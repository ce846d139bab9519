// Package transcribe resolves transcription settings, invokes a speech
// provider and normalizes its output.
package transcribe

import (
	"context"
	"errors"
	"strings"
	"time"

	"audioscribe/internal/apperr"
	"audioscribe/internal/model"
	"audioscribe/internal/observability"
	"audioscribe/internal/resilience"
	"audioscribe/internal/stt"

	"github.com/rs/zerolog"
)

// StereoChannels is the channel count submitted on the first attempt.
const StereoChannels int32 = 2

// Request asks for a transcription of an already stored object.
type Request struct {
	URI    string
	Format string
	Mode   string
}

// DirectRequest asks for a transcription of inline audio.
type DirectRequest struct {
	Audio    []byte
	FileName string
	Mode     string
}

// Options configures a Service.
type Options struct {
	Languages Languages
	// Channels overrides StereoChannels for the first attempt.
	Channels int32
	// DirectMaxBytes is the inline audio ceiling. Zero disables the check.
	DirectMaxBytes int64
}

// Service is the transcription orchestrator.
type Service struct {
	queued stt.Provider
	direct stt.Provider
	opts   Options
	log    zerolog.Logger
}

// NewService creates an orchestrator. Either provider may be nil, in which
// case the matching operation reports a configuration error.
func NewService(queued, direct stt.Provider, opts Options, log zerolog.Logger) *Service {
	if opts.Channels < 1 {
		opts.Channels = StereoChannels
	}
	return &Service{
		queued: queued,
		direct: direct,
		opts:   opts,
		log:    log.With().Str("component", "transcribe").Logger(),
	}
}

// DirectMaxBytes returns the inline audio ceiling.
func (s *Service) DirectMaxBytes() int64 { return s.opts.DirectMaxBytes }

// Transcribe runs queued recognition for a stored object. A rejection of the
// channel configuration is retried once as mono; every other failure is
// returned as is.
func (s *Service) Transcribe(ctx context.Context, req Request) (*model.TranscriptionResult, error) {
	uri := strings.TrimSpace(req.URI)
	if uri == "" {
		return nil, apperr.MissingField("gcsUri")
	}
	if _, ok := model.ParseStoredObjectURI(uri); !ok {
		return nil, apperr.Validation("Invalid gcsUri. Expected gs://<bucket>/<object>.").WithDetail("gcsUri", uri)
	}
	if strings.TrimSpace(req.Format) == "" {
		return nil, apperr.MissingField("audioFormat")
	}
	mode, err := ParseLanguageMode(req.Mode)
	if err != nil {
		return nil, err
	}
	lang, err := ResolveLanguageConfig(mode, s.opts.Languages)
	if err != nil {
		return nil, err
	}
	if s.queued == nil {
		return nil, apperr.Configuration("Queued transcription provider is not configured.")
	}

	encoding, known := ResolveEncoding(req.Format)
	log := s.log.With().
		Str("provider", s.queued.Name()).
		Str("uri", uri).
		Str("mode", string(mode)).
		Logger()
	if !known {
		observability.RecordUnknownFormat()
		log.Warn().Str("format", req.Format).Str("encoding", string(encoding)).Msg("unrecognized audio format, using default encoding")
	}

	base := stt.Request{
		URI:              uri,
		Encoding:         encoding,
		Language:         lang,
		Channels:         s.opts.Channels,
		SeparateChannels: s.opts.Channels > 1,
	}

	// A mono first attempt has nothing to fall back to.
	maxAttempts := 2
	if base.Channels <= 1 {
		maxAttempts = 1
	}
	policy := resilience.Policy{
		MaxAttempts: maxAttempts,
		Retryable:   isChannelError,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			observability.RecordChannelFallback()
			log.Warn().Err(err).Int("attempt", attempt).Msg("channel configuration rejected, retrying as mono")
		},
	}

	start := time.Now()
	out, attempts, err := resilience.Do(ctx, policy, func(ctx context.Context, attempt int) (*stt.Output, error) {
		r := base
		if attempt > 1 {
			r.Channels = 1
			r.SeparateChannels = false
		}
		return s.queued.Recognize(ctx, r)
	})
	if err != nil {
		appErr := apperr.From(err)
		observability.RecordTranscription(s.queued.Name(), string(appErr.Code), time.Since(start))
		log.Error().Err(err).Int("attempts", attempts).Str("code", string(appErr.Code)).Msg("transcription failed")
		return nil, appErr
	}

	res := Normalize(out, lang, mode)
	if res.Provider == "" {
		res.Provider = s.queued.Name()
	}
	observability.RecordTranscription(s.queued.Name(), "ok", time.Since(start))
	log.Info().
		Int("attempts", attempts).
		Int("segments", res.SegmentCount).
		Int("words", res.TotalWords).
		Dur("elapsed", time.Since(start)).
		Msg("transcription completed")
	return &res, nil
}

// TranscribeDirect sends inline audio to the direct provider in one call.
// The provider detects the language itself, so mode is only validated.
func (s *Service) TranscribeDirect(ctx context.Context, req DirectRequest) (*model.TranscriptionResult, error) {
	if len(req.Audio) == 0 {
		return nil, apperr.MissingField("audio")
	}
	if s.opts.DirectMaxBytes > 0 && int64(len(req.Audio)) > s.opts.DirectMaxBytes {
		return nil, apperr.Validationf("File size exceeds the %d MB limit for direct transcription.", s.opts.DirectMaxBytes>>20).
			WithDetail("size", len(req.Audio)).
			WithDetail("limit", s.opts.DirectMaxBytes)
	}
	mode, err := ParseLanguageMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if s.direct == nil {
		return nil, apperr.Configuration("Direct transcription provider is not configured.")
	}

	log := s.log.With().
		Str("provider", s.direct.Name()).
		Str("file", req.FileName).
		Str("mode", string(mode)).
		Logger()

	start := time.Now()
	out, err := s.direct.Recognize(ctx, stt.Request{Audio: req.Audio, FileName: req.FileName})
	if err != nil {
		appErr := apperr.From(err)
		observability.RecordTranscription(s.direct.Name(), string(appErr.Code), time.Since(start))
		log.Error().Err(err).Str("code", string(appErr.Code)).Msg("direct transcription failed")
		return nil, appErr
	}

	res := Normalize(out, stt.LanguageConfig{}, mode)
	if res.Provider == "" {
		res.Provider = s.direct.Name()
	}
	observability.RecordTranscription(s.direct.Name(), "ok", time.Since(start))
	log.Info().Int("words", res.TotalWords).Dur("elapsed", time.Since(start)).Msg("direct transcription completed")
	return &res, nil
}

func isChannelError(err error) bool {
	return errors.Is(err, stt.ErrChannelConfig)
}
