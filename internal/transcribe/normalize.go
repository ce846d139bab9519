package transcribe

import (
	"strings"

	"audioscribe/internal/model"
	"audioscribe/internal/stt"
)

// NoSpeechMessage accompanies a successful result with an empty transcript.
const NoSpeechMessage = "No speech detected in the audio."

// Normalize converts either provider output variant into the common result.
func Normalize(out *stt.Output, lang stt.LanguageConfig, mode model.LanguageMode) model.TranscriptionResult {
	if out == nil {
		out = &stt.Output{Kind: stt.OutputSegments}
	}

	var res model.TranscriptionResult
	switch out.Kind {
	case stt.OutputFlat:
		res = normalizeFlat(out.Flat)
	default:
		res = normalizeSegments(out.Segments, lang, mode)
	}
	res.Provider = out.Provider
	res.TotalWords = len(strings.Fields(res.Transcript))
	if res.NoSpeech() {
		res.Message = NoSpeechMessage
	}
	return res
}

func normalizeSegments(segments []stt.Segment, lang stt.LanguageConfig, mode model.LanguageMode) model.TranscriptionResult {
	parts := make([]string, 0, len(segments))
	var confSum float64
	for _, s := range segments {
		text := strings.TrimSpace(s.Transcript)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		if s.Confidence != nil {
			confSum += *s.Confidence
		}
	}

	confidence := 0.0
	if len(parts) > 0 {
		confidence = confSum / float64(len(parts))
	}

	res := model.TranscriptionResult{
		Transcript:   strings.Join(parts, " "),
		Confidence:   &confidence,
		SegmentCount: len(segments),
		Language:     lang.Code,
	}

	if mode == model.ModeMixed && len(lang.Alternates) > 0 {
		res.DetectedLanguages = detectedLanguages(segments, lang)
		if !res.NoSpeech() {
			res.PrimaryLanguage = ClassifyPrimaryLanguage(res.Transcript, lang.Code, lang.Alternates[0])
		}
	}
	return res
}

// detectedLanguages returns the distinct provider-reported tags in order,
// falling back to the configured tags when the provider reported none.
func detectedLanguages(segments []stt.Segment, lang stt.LanguageConfig) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, s := range segments {
		tag := strings.TrimSpace(s.LanguageCode)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return lang.Tags()
	}
	return tags
}

func normalizeFlat(f *stt.Flat) model.TranscriptionResult {
	if f == nil {
		return model.TranscriptionResult{}
	}
	duration := f.Duration
	return model.TranscriptionResult{
		Transcript:   strings.TrimSpace(f.Text),
		SegmentCount: f.SegmentCount,
		Language:     f.Language,
		Duration:     &duration,
		Model:        f.Model,
	}
}
