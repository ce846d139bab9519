package config

import (
	"fmt"
	"strings"
	"time"

	"audioscribe/internal/apperr"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	MiB = 1 << 20
)

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Google Cloud (storage + queued speech provider)
	ProjectID   string `envconfig:"GCP_PROJECT_ID"`
	ClientEmail string `envconfig:"GCP_CLIENT_EMAIL"`
	PrivateKey  string `envconfig:"GCP_PRIVATE_KEY"` // "\n"-escaped form accepted
	BucketName  string `envconfig:"GCS_BUCKET_NAME"`

	// Direct provider
	OpenAIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel string `envconfig:"OPENAI_TRANSCRIPTION_MODEL" default:"whisper-1"`

	SourceLanguage    string `envconfig:"SOURCE_LANGUAGE" default:"hi-IN"`
	SecondaryLanguage string `envconfig:"SECONDARY_LANGUAGE" default:"en-US"`
	SpeechModel       string `envconfig:"SPEECH_MODEL" default:"latest_long"`
	AudioChannelCount int32  `envconfig:"AUDIO_CHANNEL_COUNT" default:"2"`

	MaxUploadBytes       int64 `envconfig:"MAX_UPLOAD_BYTES" default:"104857600"`      // 100 MiB
	MaxDirectUploadBytes int64 `envconfig:"MAX_DIRECT_UPLOAD_BYTES" default:"26214400"` // 25 MiB

	UploadMaxAttempts      int `envconfig:"UPLOAD_MAX_ATTEMPTS" default:"3"`
	UploadInitialBackoffMs int `envconfig:"UPLOAD_INITIAL_BACKOFF_MS" default:"1000"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	GinMode        string `envconfig:"GIN_MODE" default:""`
}

// Load reads configuration from a .env file (if present) and the environment.
// Provider credentials are not required here; each call path checks the
// values it needs through the *Credentials methods.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration without reading a .env file.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.PrivateKey = NormalizePrivateKey(cfg.PrivateKey)

	if cfg.MaxUploadBytes <= 0 || cfg.MaxDirectUploadBytes <= 0 {
		return nil, fmt.Errorf("upload size ceilings must be positive")
	}
	if cfg.UploadMaxAttempts < 1 {
		return nil, fmt.Errorf("UPLOAD_MAX_ATTEMPTS must be at least 1")
	}
	return &cfg, nil
}

// NormalizePrivateKey turns literal "\n" sequences into newlines, the form
// PEM keys take when pasted into a single-line environment variable.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"`)
	return strings.TrimSpace(strings.ReplaceAll(key, `\n`, "\n"))
}

// UploadInitialBackoff returns the first retry delay for storage writes.
func (c *Config) UploadInitialBackoff() time.Duration {
	return time.Duration(c.UploadInitialBackoffMs) * time.Millisecond
}

// ServiceAccount is the subset of a Google service-account key the clients need.
type ServiceAccount struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
}

// StorageCredentials validates the settings needed for the upload path.
func (c *Config) StorageCredentials() (ServiceAccount, string, error) {
	sa, err := c.QueuedCredentials()
	if err != nil {
		if appErr, ok := apperr.As(err); ok && c.BucketName == "" {
			missing, _ := appErr.Details["missing"].([]string)
			return ServiceAccount{}, "", apperr.MissingConfig(append(missing, "GCS_BUCKET_NAME")...)
		}
		return ServiceAccount{}, "", err
	}
	if c.BucketName == "" {
		return ServiceAccount{}, "", apperr.MissingConfig("GCS_BUCKET_NAME")
	}
	return sa, c.BucketName, nil
}

// QueuedCredentials validates the settings needed for the queued provider.
func (c *Config) QueuedCredentials() (ServiceAccount, error) {
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "GCP_PROJECT_ID")
	}
	if c.ClientEmail == "" {
		missing = append(missing, "GCP_CLIENT_EMAIL")
	}
	if c.PrivateKey == "" {
		missing = append(missing, "GCP_PRIVATE_KEY")
	}
	if len(missing) > 0 {
		return ServiceAccount{}, apperr.MissingConfig(missing...)
	}
	return ServiceAccount{
		ProjectID:   c.ProjectID,
		ClientEmail: c.ClientEmail,
		PrivateKey:  c.PrivateKey,
	}, nil
}

// DirectCredentials validates the settings needed for the direct provider.
func (c *Config) DirectCredentials() (string, error) {
	if c.OpenAIKey == "" {
		return "", apperr.MissingConfig("OPENAI_API_KEY")
	}
	return c.OpenAIKey, nil
}
