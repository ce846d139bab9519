package stt

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"audioscribe/internal/apperr"
	"audioscribe/internal/config"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const WhisperProviderName = "whisper"

// audioTranscriber is the subset of *openai.Client the provider uses.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// WhisperProvider implements the direct provider on the OpenAI transcription
// API. Audio bytes are sent inline, the language is auto-detected and the
// response has no confidence score.
type WhisperProvider struct {
	cfg      *config.Config
	log      zerolog.Logger
	model    string
	maxBytes int64

	mu     sync.Mutex
	client audioTranscriber
}

// NewWhisperProvider creates a lazily-initialized Whisper provider.
func NewWhisperProvider(cfg *config.Config, log zerolog.Logger) *WhisperProvider {
	model := cfg.OpenAIModel
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperProvider{
		cfg:      cfg,
		log:      log.With().Str("provider", WhisperProviderName).Logger(),
		model:    model,
		maxBytes: cfg.MaxDirectUploadBytes,
	}
}

// Name returns the provider name
func (p *WhisperProvider) Name() string {
	return WhisperProviderName
}

// MaxBytes is the hard input ceiling of the provider.
func (p *WhisperProvider) MaxBytes() int64 {
	return p.maxBytes
}

func (p *WhisperProvider) transcriber() (audioTranscriber, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	apiKey, err := p.cfg.DirectCredentials()
	if err != nil {
		return nil, err
	}
	p.client = openai.NewClient(apiKey)
	return p.client, nil
}

// Recognize sends req.Audio to the transcription API.
func (p *WhisperProvider) Recognize(ctx context.Context, req Request) (*Output, error) {
	if len(req.Audio) == 0 {
		return nil, apperr.MissingField("audio")
	}
	if p.maxBytes > 0 && int64(len(req.Audio)) > p.maxBytes {
		return nil, apperr.Validationf("File size exceeds the %d MB limit for direct transcription.", p.maxBytes>>20)
	}

	client, err := p.transcriber()
	if err != nil {
		return nil, err
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "audio.mp3"
	}

	startTime := time.Now()
	p.log.Info().
		Str("file", fileName).
		Int("bytes", len(req.Audio)).
		Str("model", p.model).
		Msg("submitting direct transcription")

	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: fileName,
		Reader:   bytes.NewReader(req.Audio),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		p.log.Warn().Err(err).Dur("elapsed", time.Since(startTime)).Msg("direct transcription failed")
		return nil, mapOpenAIError(err)
	}

	p.log.Info().
		Str("language", resp.Language).
		Float64("duration", resp.Duration).
		Int("segments", len(resp.Segments)).
		Dur("elapsed", time.Since(startTime)).
		Msg("direct transcription completed")

	return &Output{
		Kind:     OutputFlat,
		Provider: WhisperProviderName,
		Flat: &Flat{
			Text:         strings.TrimSpace(resp.Text),
			Language:     whisperLanguageCode(resp.Language),
			Duration:     resp.Duration,
			SegmentCount: len(resp.Segments),
			Model:        p.model,
		},
	}, nil
}

// mapOpenAIError converts a status-code-only failure into the error taxonomy.
func mapOpenAIError(err error) error {
	code := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	}

	switch code {
	case http.StatusUnauthorized:
		return apperr.Authentication("Invalid API key for the transcription service.").WithCause(err)
	case http.StatusTooManyRequests:
		return apperr.Quota().WithCause(err)
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apperr.Validation("The audio file could not be processed by the transcription service.").WithCause(err)
	default:
		return apperr.Provider("").WithCause(err)
	}
}

// whisperLanguages maps the language names verbose_json reports to ISO 639-1.
var whisperLanguages = map[string]string{
	"arabic":     "ar",
	"bengali":    "bn",
	"chinese":    "zh",
	"dutch":      "nl",
	"english":    "en",
	"french":     "fr",
	"german":     "de",
	"greek":      "el",
	"gujarati":   "gu",
	"hebrew":     "he",
	"hindi":      "hi",
	"indonesian": "id",
	"italian":    "it",
	"japanese":   "ja",
	"kannada":    "kn",
	"khmer":      "km",
	"korean":     "ko",
	"malayalam":  "ml",
	"marathi":    "mr",
	"myanmar":    "my",
	"nepali":     "ne",
	"persian":    "fa",
	"polish":     "pl",
	"portuguese": "pt",
	"punjabi":    "pa",
	"russian":    "ru",
	"sinhala":    "si",
	"spanish":    "es",
	"tamil":      "ta",
	"telugu":     "te",
	"thai":       "th",
	"turkish":    "tr",
	"ukrainian":  "uk",
	"urdu":       "ur",
	"vietnamese": "vi",
}

// whisperLanguageCode returns the ISO 639-1 code for a detected language name.
// Values that already look like codes, and names it does not know, pass through.
func whisperLanguageCode(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := whisperLanguages[name]; ok {
		return code
	}
	return name
}

var _ Provider = (*WhisperProvider)(nil)
