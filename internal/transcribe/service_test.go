package transcribe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"audioscribe/internal/apperr"
	"audioscribe/internal/config"
	"audioscribe/internal/stt"
	"audioscribe/internal/stt/mock"

	"github.com/rs/zerolog"
)

var testLangs = Languages{Source: "hi-IN", Secondary: "en-US"}

func newTestService(queued, direct stt.Provider) *Service {
	return NewService(queued, direct, Options{Languages: testLangs, DirectMaxBytes: 16}, zerolog.Nop())
}

func channelErr() error {
	return apperr.Provider("The audio channel configuration was rejected.").
		WithCause(fmt.Errorf("%w: Must use single channel (mono) audio", stt.ErrChannelConfig))
}

func speech(text string) *stt.Output {
	c := 0.8
	return &stt.Output{Kind: stt.OutputSegments, Segments: []stt.Segment{{Transcript: text, Confidence: &c}}}
}

func TestTranscribe_FirstAttemptIsStereo(t *testing.T) {
	p := &mock.Provider{Output: speech("hello")}
	svc := newTestService(p, nil)

	res, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/audio/x.wav", Format: "wav", Mode: "source"})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if res.Transcript != "hello" || res.Language != "hi-IN" || res.Provider != "mock" {
		t.Errorf("unexpected result %+v", res)
	}

	reqs := p.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 call, got %d", len(reqs))
	}
	r := reqs[0]
	if r.Channels != 2 || !r.SeparateChannels || r.Encoding != stt.EncodingLinear16 || r.URI != "gs://b/audio/x.wav" {
		t.Errorf("unexpected request %+v", r)
	}
}

func TestTranscribe_ChannelFallbackRetriesOnceAsMono(t *testing.T) {
	p := &mock.Provider{Errs: []error{channelErr()}, Output: speech("hello again")}
	svc := newTestService(p, nil)

	res, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "mp3"})
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if res.Transcript != "hello again" {
		t.Errorf("transcript = %q", res.Transcript)
	}

	reqs := p.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", len(reqs))
	}
	if reqs[1].Channels != 1 || reqs[1].SeparateChannels {
		t.Errorf("retry must be mono without separation: %+v", reqs[1])
	}
	if reqs[1].URI != reqs[0].URI || reqs[1].Encoding != reqs[0].Encoding {
		t.Errorf("retry changed more than the channel settings: %+v vs %+v", reqs[0], reqs[1])
	}
}

func TestTranscribe_ChannelFallbackIsNotRepeated(t *testing.T) {
	p := &mock.Provider{Err: channelErr()}
	svc := newTestService(p, nil)

	_, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "mp3"})
	if !errors.Is(err, stt.ErrChannelConfig) {
		t.Errorf("expected channel error to surface, got %v", err)
	}
	if p.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", p.CallCount())
	}
}

func TestTranscribe_MonoConfigurationIsNotRetried(t *testing.T) {
	p := &mock.Provider{Err: channelErr()}
	svc := NewService(p, nil, Options{Languages: testLangs, Channels: 1}, zerolog.Nop())

	_, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "wav"})
	if !errors.Is(err, stt.ErrChannelConfig) {
		t.Errorf("expected channel error to surface, got %v", err)
	}
	if p.CallCount() != 1 {
		t.Fatalf("expected a single call, got %d", p.CallCount())
	}
	if r := p.Requests()[0]; r.Channels != 1 || r.SeparateChannels {
		t.Errorf("unexpected request %+v", r)
	}
}

func TestTranscribe_OtherErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Code
	}{
		{"auth", apperr.Authentication(""), apperr.CodeAuthentication},
		{"not found", apperr.NotFound("audio file"), apperr.CodeNotFound},
		{"quota", apperr.Quota(), apperr.CodeQuota},
		{"raw", errors.New("socket closed"), apperr.CodeProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mock.Provider{Err: tt.err}
			svc := newTestService(p, nil)

			_, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "mp3"})
			if !apperr.Is(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
			if p.CallCount() != 1 {
				t.Errorf("expected a single call, got %d", p.CallCount())
			}
		})
	}
}

func TestTranscribe_ValidationBeforeProvider(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing uri", Request{Format: "mp3"}},
		{"not gcs", Request{URI: "https://example.com/a.mp3", Format: "mp3"}},
		{"scheme only", Request{URI: "gs://", Format: "mp3"}},
		{"bucket without object", Request{URI: "gs://bucket", Format: "mp3"}},
		{"bucket with empty object", Request{URI: "gs://bucket/", Format: "mp3"}},
		{"missing format", Request{URI: "gs://b/k"}},
		{"bad mode", Request{URI: "gs://b/k", Format: "mp3", Mode: "all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mock.Provider{Output: speech("x")}
			svc := newTestService(p, nil)

			if _, err := svc.Transcribe(context.Background(), tt.req); !apperr.Is(err, apperr.CodeValidation) {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
			if p.CallCount() != 0 {
				t.Errorf("provider must not be called, got %d calls", p.CallCount())
			}
		})
	}
}

func TestTranscribe_UnknownFormatFallsBackToMP3(t *testing.T) {
	p := &mock.Provider{Output: speech("x")}
	svc := newTestService(p, nil)

	if _, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "webm"}); err != nil {
		t.Fatalf("unknown format must not fail: %v", err)
	}
	if enc := p.Requests()[0].Encoding; enc != stt.EncodingMP3 {
		t.Errorf("encoding = %s, want MP3", enc)
	}
}

func TestTranscribe_MixedModeRequest(t *testing.T) {
	p := &mock.Provider{Output: speech("नमस्ते नमस्ते ok")}
	svc := newTestService(p, nil)

	res, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "flac"})
	if err != nil {
		t.Fatal(err)
	}
	lang := p.Requests()[0].Language
	if lang.Code != "hi-IN" || len(lang.Alternates) != 1 || lang.Alternates[0] != "en-US" {
		t.Errorf("unexpected language config %+v", lang)
	}
	if res.PrimaryLanguage != "hi-IN" || len(res.DetectedLanguages) != 2 {
		t.Errorf("unexpected language result %+v", res)
	}
}

func TestTranscribe_NoSpeechIsSuccess(t *testing.T) {
	p := &mock.Provider{Output: &stt.Output{Kind: stt.OutputSegments}}
	svc := newTestService(p, nil)

	res, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "mp3"})
	if err != nil {
		t.Fatalf("no speech must not fail: %v", err)
	}
	if res.Message != NoSpeechMessage || res.Transcript != "" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestTranscribe_MissingCredentialsBeforeRecognition(t *testing.T) {
	svc := newTestService(stt.NewGoogleProvider(&config.Config{SpeechModel: "latest_long"}, zerolog.Nop()), nil)

	_, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "mp3"})
	if !apperr.Is(err, apperr.CodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestTranscribeDirect(t *testing.T) {
	out := &stt.Output{Kind: stt.OutputFlat, Flat: &stt.Flat{Text: "hi there", Language: "english", Duration: 1.5, SegmentCount: 1, Model: "whisper-1"}}
	p := &mock.Provider{ProviderName: "whisper", Output: out}
	svc := newTestService(nil, p)

	res, err := svc.TranscribeDirect(context.Background(), DirectRequest{Audio: []byte("abc"), FileName: "a.mp3"})
	if err != nil {
		t.Fatalf("TranscribeDirect failed: %v", err)
	}
	if res.Transcript != "hi there" || res.TotalWords != 2 || res.Confidence != nil || res.Provider != "whisper" {
		t.Errorf("unexpected result %+v", res)
	}
	if p.CallCount() != 1 || p.Requests()[0].FileName != "a.mp3" {
		t.Errorf("unexpected calls %+v", p.Requests())
	}
}

func TestTranscribeDirect_SizeCeiling(t *testing.T) {
	p := &mock.Provider{}
	svc := newTestService(nil, p)

	if _, err := svc.TranscribeDirect(context.Background(), DirectRequest{Audio: make([]byte, 17)}); !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
	if _, err := svc.TranscribeDirect(context.Background(), DirectRequest{}); !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for empty audio, got %v", err)
	}
	if p.CallCount() != 0 {
		t.Errorf("provider must not be called, got %d", p.CallCount())
	}
}

func TestTranscribeDirect_ProviderErrorNotRetried(t *testing.T) {
	p := &mock.Provider{Err: apperr.Quota()}
	svc := newTestService(nil, p)

	if _, err := svc.TranscribeDirect(context.Background(), DirectRequest{Audio: []byte("a")}); !apperr.Is(err, apperr.CodeQuota) {
		t.Errorf("expected QUOTA_EXCEEDED, got %v", err)
	}
	if p.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", p.CallCount())
	}
}

func TestService_MissingProvider(t *testing.T) {
	svc := newTestService(nil, nil)
	if _, err := svc.Transcribe(context.Background(), Request{URI: "gs://b/k", Format: "mp3"}); !apperr.Is(err, apperr.CodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
	if _, err := svc.TranscribeDirect(context.Background(), DirectRequest{Audio: []byte("a")}); !apperr.Is(err, apperr.CodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}
