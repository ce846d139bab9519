package stt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"audioscribe/internal/apperr"
	"audioscribe/internal/config"
	"audioscribe/internal/gcpauth"
	"audioscribe/internal/model"

	speech "cloud.google.com/go/speech/apiv1p1beta1"
	"cloud.google.com/go/speech/apiv1p1beta1/speechpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const GoogleProviderName = "google"

// recognizeFunc submits a long-running request and waits for its result.
type recognizeFunc func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)

// GoogleProvider implements the queued provider on Google Cloud
// Speech-to-Text long-running recognition. Audio is read from Cloud Storage
// by URI; polling for completion is left to the client library.
type GoogleProvider struct {
	cfg   *config.Config
	log   zerolog.Logger
	model string

	mu        sync.Mutex
	client    *speech.Client
	recognize recognizeFunc
}

// NewGoogleProvider creates a lazily-initialized Google STT provider.
func NewGoogleProvider(cfg *config.Config, log zerolog.Logger) *GoogleProvider {
	return &GoogleProvider{
		cfg:   cfg,
		log:   log.With().Str("provider", GoogleProviderName).Logger(),
		model: cfg.SpeechModel,
	}
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return GoogleProviderName
}

func (p *GoogleProvider) recognizer(ctx context.Context) (recognizeFunc, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.recognize != nil {
		return p.recognize, nil
	}

	sa, err := p.cfg.QueuedCredentials()
	if err != nil {
		return nil, err
	}
	base := context.WithoutCancel(ctx)
	creds, err := gcpauth.Credentials(base, sa)
	if err != nil {
		return nil, apperr.Configuration("Speech provider credentials are invalid.").WithCause(err)
	}
	client, err := speech.NewClient(base, option.WithCredentials(creds))
	if err != nil {
		return nil, apperr.Provider("").WithCause(fmt.Errorf("failed to create speech client: %w", err))
	}

	p.log.Info().Str("project", sa.ProjectID).Msg("speech client initialized")
	p.client = client
	p.recognize = func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	}
	return p.recognize, nil
}

// Recognize submits a long-running recognition for req.URI and waits for it.
func (p *GoogleProvider) Recognize(ctx context.Context, req Request) (*Output, error) {
	if _, ok := model.ParseStoredObjectURI(req.URI); !ok {
		return nil, apperr.Validation("Invalid storage URI. Expected gs://<bucket>/<object>.")
	}

	recognize, err := p.recognizer(ctx)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	p.log.Info().
		Str("uri", req.URI).
		Str("encoding", string(req.Encoding)).
		Strs("languages", req.Language.Tags()).
		Int32("channels", req.Channels).
		Msg("submitting long-running recognition")

	resp, err := recognize(ctx, p.buildRequest(req))
	if err != nil {
		p.log.Warn().Err(err).Dur("elapsed", time.Since(startTime)).Msg("recognition failed")
		return nil, mapGoogleError(err)
	}

	results := resp.GetResults()
	segments := make([]Segment, 0, len(results))
	for _, r := range results {
		seg := Segment{
			LanguageCode: r.GetLanguageCode(),
			ChannelTag:   r.GetChannelTag(),
		}
		if alts := r.GetAlternatives(); len(alts) > 0 {
			seg.Transcript = alts[0].GetTranscript()
			conf := float64(alts[0].GetConfidence())
			seg.Confidence = &conf
		}
		segments = append(segments, seg)
	}

	p.log.Info().
		Int("results", len(segments)).
		Dur("elapsed", time.Since(startTime)).
		Msg("recognition completed")

	return &Output{
		Kind:     OutputSegments,
		Provider: GoogleProviderName,
		Segments: segments,
	}, nil
}

func (p *GoogleProvider) buildRequest(req Request) *speechpb.LongRunningRecognizeRequest {
	return &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                            googleEncoding(req.Encoding),
			LanguageCode:                        req.Language.Code,
			AlternativeLanguageCodes:            req.Language.Alternates,
			AudioChannelCount:                   req.Channels,
			EnableSeparateRecognitionPerChannel: req.SeparateChannels,
			EnableAutomaticPunctuation:          true,
			Model:                               p.model,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: req.URI},
		},
	}
}

// Close releases the speech client, if one was created.
func (p *GoogleProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	p.recognize = nil
	return err
}

func googleEncoding(e Encoding) speechpb.RecognitionConfig_AudioEncoding {
	switch e {
	case EncodingLinear16:
		return speechpb.RecognitionConfig_LINEAR16
	case EncodingFLAC:
		return speechpb.RecognitionConfig_FLAC
	case EncodingOggOpus:
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_MP3
	}
}

// mapGoogleError converts a gRPC failure into the error taxonomy.
func mapGoogleError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		if gcpauth.IsCredentialError(err) {
			return apperr.Authentication("").WithCause(err)
		}
		return apperr.Provider("").WithCause(err)
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return apperr.Authentication("").WithCause(err)
	case codes.PermissionDenied:
		return apperr.Authorization("").WithCause(err)
	case codes.NotFound:
		return apperr.NotFound("audio file").WithCause(err)
	case codes.ResourceExhausted:
		return apperr.Quota().WithCause(err)
	case codes.InvalidArgument:
		if isChannelMessage(st.Message()) {
			return apperr.Provider("The audio channel configuration was rejected.").
				WithCause(fmt.Errorf("%w: %s", ErrChannelConfig, st.Message()))
		}
		return apperr.Provider("The speech provider rejected the recognition request.").WithCause(err)
	default:
		return apperr.Provider("").WithCause(err)
	}
}

func isChannelMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "channel") || strings.Contains(msg, "mono")
}

var _ Provider = (*GoogleProvider)(nil)
