package model

// LanguageMode selects which languages the provider should expect.
type LanguageMode string

const (
	ModeSource    LanguageMode = "source"
	ModeSecondary LanguageMode = "secondary"
	ModeMixed     LanguageMode = "mixed"
)

// PrimaryMixed is the primary-language label when neither script dominates.
const PrimaryMixed = "mixed"

// TranscriptionResult is the provider-independent outcome of one request.
// Fields that only one provider supplies are optional.
type TranscriptionResult struct {
	Provider   string
	Transcript string
	// Confidence is nil when the provider does not report one.
	Confidence   *float64
	SegmentCount int
	TotalWords   int
	Language     string

	DetectedLanguages []string
	PrimaryLanguage   string

	// Direct provider only.
	Duration *float64
	Model    string

	// Message is set when the request succeeded without recognizable speech.
	Message string
}

// NoSpeech reports whether the provider returned nothing to transcribe.
func (r *TranscriptionResult) NoSpeech() bool {
	return r.Transcript == ""
}
