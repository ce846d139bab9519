package stt

// Encoding is the audio encoding declared to the provider.
type Encoding string

const (
	EncodingLinear16 Encoding = "LINEAR16"
	EncodingMP3      Encoding = "MP3"
	EncodingFLAC     Encoding = "FLAC"
	EncodingOggOpus  Encoding = "OGG_OPUS"
)

// LanguageConfig is the primary language plus optional alternates the
// provider may switch to within one request.
type LanguageConfig struct {
	Code       string
	Alternates []string
}

// Tags returns the primary code followed by the alternates.
func (l LanguageConfig) Tags() []string {
	tags := make([]string, 0, 1+len(l.Alternates))
	tags = append(tags, l.Code)
	return append(tags, l.Alternates...)
}

// Request describes one recognition call. Queued providers read URI; direct
// providers read Audio and FileName.
type Request struct {
	URI      string
	Audio    []byte
	FileName string

	Encoding Encoding
	Language LanguageConfig

	Channels         int32
	SeparateChannels bool
}

// OutputKind tags which variant of Output is populated.
type OutputKind int

const (
	// OutputSegments carries per-segment transcripts (queued provider).
	OutputSegments OutputKind = iota + 1
	// OutputFlat carries a single transcript with summary fields (direct provider).
	OutputFlat
)

// Segment is one recognized result with its best alternative.
type Segment struct {
	Transcript string
	// Confidence is nil when the provider did not report one.
	Confidence   *float64
	LanguageCode string
	ChannelTag   int32
}

// Flat is a whole-file transcript from a provider without segment detail.
type Flat struct {
	Text         string
	Language     string
	Duration     float64
	SegmentCount int
	Model        string
}

// Output is the raw provider result, before normalization.
type Output struct {
	Kind     OutputKind
	Provider string
	Segments []Segment
	Flat     *Flat
}
