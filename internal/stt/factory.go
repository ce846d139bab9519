package stt

import (
	"audioscribe/internal/config"

	"github.com/rs/zerolog"
)

// Providers holds the process-wide provider handles. They are created once at
// startup and shared by all requests; credentials are checked on first use.
type Providers struct {
	Queued *GoogleProvider
	Direct *WhisperProvider
}

// NewProviders creates both providers from configuration.
func NewProviders(cfg *config.Config, log zerolog.Logger) *Providers {
	log.Info().
		Str("queued", GoogleProviderName).
		Str("direct", WhisperProviderName).
		Msg("STT providers registered")
	return &Providers{
		Queued: NewGoogleProvider(cfg, log),
		Direct: NewWhisperProvider(cfg, log),
	}
}

// Close releases provider clients.
func (p *Providers) Close() error {
	return p.Queued.Close()
}
