package observability

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	globalLogger zerolog.Logger
	initOnce     sync.Once
)

// InitLogger initializes the global structured logger. Only the first call
// takes effect.
func InitLogger(level string, pretty bool) {
	initOnce.Do(func() {
		logLevel, err := zerolog.ParseLevel(level)
		if err != nil || level == "" {
			logLevel = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(logLevel)

		if pretty {
			output := zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			}
			globalLogger = zerolog.New(output).With().Timestamp().Logger()
		} else {
			globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		}

		log.Logger = globalLogger
	})
}

// GetLogger returns the global logger, initializing it with defaults if needed.
func GetLogger() zerolog.Logger {
	InitLogger("info", false)
	return globalLogger
}

// WithRequestID creates a logger carrying a request ID, generating one if empty.
func WithRequestID(requestID string) zerolog.Logger {
	if requestID == "" {
		requestID = NewRequestID()
	}
	return GetLogger().With().Str("request_id", requestID).Logger()
}

// NewRequestID generates a new request ID.
func NewRequestID() string {
	return uuid.New().String()
}
