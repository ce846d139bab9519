package stt

import (
	"context"
	"errors"
	"testing"

	"audioscribe/internal/apperr"
	"audioscribe/internal/config"

	"cloud.google.com/go/speech/apiv1p1beta1/speechpb"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newFakeGoogle(fn recognizeFunc) *GoogleProvider {
	p := NewGoogleProvider(&config.Config{SpeechModel: "latest_long"}, zerolog.Nop())
	p.recognize = fn
	return p
}

func TestGoogleProvider_BuildRequest(t *testing.T) {
	p := newFakeGoogle(nil)
	req := p.buildRequest(Request{
		URI:              "gs://bucket/audio/k.wav",
		Encoding:         EncodingLinear16,
		Language:         LanguageConfig{Code: "hi-IN", Alternates: []string{"en-US"}},
		Channels:         2,
		SeparateChannels: true,
	})

	cfg := req.GetConfig()
	if cfg.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("encoding = %v", cfg.GetEncoding())
	}
	if cfg.GetLanguageCode() != "hi-IN" || len(cfg.GetAlternativeLanguageCodes()) != 1 || cfg.GetAlternativeLanguageCodes()[0] != "en-US" {
		t.Errorf("languages = %q %v", cfg.GetLanguageCode(), cfg.GetAlternativeLanguageCodes())
	}
	if cfg.GetAudioChannelCount() != 2 || !cfg.GetEnableSeparateRecognitionPerChannel() {
		t.Errorf("channels = %d separate = %v", cfg.GetAudioChannelCount(), cfg.GetEnableSeparateRecognitionPerChannel())
	}
	if !cfg.GetEnableAutomaticPunctuation() || cfg.GetModel() != "latest_long" {
		t.Errorf("punctuation = %v model = %q", cfg.GetEnableAutomaticPunctuation(), cfg.GetModel())
	}
	if req.GetAudio().GetUri() != "gs://bucket/audio/k.wav" {
		t.Errorf("uri = %q", req.GetAudio().GetUri())
	}
}

func TestGoogleEncoding(t *testing.T) {
	tests := map[Encoding]speechpb.RecognitionConfig_AudioEncoding{
		EncodingLinear16: speechpb.RecognitionConfig_LINEAR16,
		EncodingMP3:      speechpb.RecognitionConfig_MP3,
		EncodingFLAC:     speechpb.RecognitionConfig_FLAC,
		EncodingOggOpus:  speechpb.RecognitionConfig_OGG_OPUS,
		Encoding(""):     speechpb.RecognitionConfig_MP3,
	}
	for in, want := range tests {
		if got := googleEncoding(in); got != want {
			t.Errorf("googleEncoding(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGoogleProvider_Recognize(t *testing.T) {
	p := newFakeGoogle(func(_ context.Context, _ *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
		return &speechpb.LongRunningRecognizeResponse{
			Results: []*speechpb.SpeechRecognitionResult{
				{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "नमस्ते", Confidence: 0.5}}, LanguageCode: "hi-in", ChannelTag: 1},
				{LanguageCode: "en-us"},
			},
		}, nil
	})

	out, err := p.Recognize(context.Background(), Request{URI: "gs://b/k.mp3"})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if out.Kind != OutputSegments || len(out.Segments) != 2 {
		t.Fatalf("unexpected output %+v", out)
	}
	first := out.Segments[0]
	if first.Transcript != "नमस्ते" || first.Confidence == nil || *first.Confidence != 0.5 || first.LanguageCode != "hi-in" || first.ChannelTag != 1 {
		t.Errorf("unexpected first segment %+v", first)
	}
	if out.Segments[1].Confidence != nil || out.Segments[1].Transcript != "" {
		t.Errorf("segment without alternatives should be empty, got %+v", out.Segments[1])
	}
}

func TestGoogleProvider_RejectsNonGCSURI(t *testing.T) {
	called := false
	p := newFakeGoogle(func(context.Context, *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
		called = true
		return nil, nil
	})

	for _, uri := range []string{"https://example.com/a.mp3", "gs://bucket", "gs://"} {
		_, err := p.Recognize(context.Background(), Request{URI: uri})
		if !apperr.Is(err, apperr.CodeValidation) {
			t.Errorf("%q: expected VALIDATION_ERROR, got %v", uri, err)
		}
	}
	if called {
		t.Error("provider must not be called for an invalid URI")
	}
}

func TestGoogleProvider_MissingCredentials(t *testing.T) {
	p := NewGoogleProvider(&config.Config{}, zerolog.Nop())
	_, err := p.Recognize(context.Background(), Request{URI: "gs://b/k.mp3"})
	if !apperr.Is(err, apperr.CodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestMapGoogleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    apperr.Code
		channel bool
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "bad token"), apperr.CodeAuthentication, false},
		{"permission", status.Error(codes.PermissionDenied, "no access"), apperr.CodeAuthorization, false},
		{"not found", status.Error(codes.NotFound, "object missing"), apperr.CodeNotFound, false},
		{"quota", status.Error(codes.ResourceExhausted, "quota"), apperr.CodeQuota, false},
		{"channel", status.Error(codes.InvalidArgument, "Must use single channel (mono) audio, but WAV header indicates 2 channels."), apperr.CodeProvider, true},
		{"other invalid", status.Error(codes.InvalidArgument, "sample rate mismatch"), apperr.CodeProvider, false},
		{"internal", status.Error(codes.Internal, "oops"), apperr.CodeProvider, false},
		{"plain", errors.New("dial tcp: timeout"), apperr.CodeProvider, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapGoogleError(tt.err)
			if !apperr.Is(got, tt.want) {
				t.Errorf("mapGoogleError(%v) = %v, want code %s", tt.err, got, tt.want)
			}
			if errors.Is(got, ErrChannelConfig) != tt.channel {
				t.Errorf("ErrChannelConfig = %v, want %v", errors.Is(got, ErrChannelConfig), tt.channel)
			}
		})
	}
}
