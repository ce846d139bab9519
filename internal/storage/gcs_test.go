package storage

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"audioscribe/internal/apperr"
	"audioscribe/internal/config"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
)

func TestGCS_MissingConfigurationFailsBeforeIO(t *testing.T) {
	g := NewGCS(&config.Config{}, zerolog.Nop())

	_, err := g.Upload(context.Background(), "audio/k.mp3", "audio/mpeg", []byte("x"))
	if !apperr.Is(err, apperr.CodeConfiguration) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close on uninitialized client: %v", err)
	}
}

func TestClassifyWriteError(t *testing.T) {
	err := classifyWriteError(&googleapi.Error{Code: http.StatusForbidden, Message: "denied"})
	if !errors.Is(err, ErrCredentials) {
		t.Errorf("expected ErrCredentials for 403, got %v", err)
	}

	err = classifyWriteError(&googleapi.Error{Code: http.StatusServiceUnavailable})
	if errors.Is(err, ErrCredentials) {
		t.Errorf("did not expect ErrCredentials for 503, got %v", err)
	}
	var ge *googleapi.Error
	if !errors.As(err, &ge) {
		t.Error("expected the original error to stay in the chain")
	}
}
