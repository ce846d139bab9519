package stt

import (
	"context"
	"errors"
)

// ErrChannelConfig marks a request the provider rejected because of its audio
// channel settings (typically a mono file submitted as stereo).
var ErrChannelConfig = errors.New("audio channel configuration rejected")

// Provider defines the interface for speech-to-text providers.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Recognize submits audio and blocks until the provider has a result.
	Recognize(ctx context.Context, req Request) (*Output, error)

	// Name returns the name of the provider (e.g., "google", "whisper")
	Name() string
}
