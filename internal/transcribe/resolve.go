package transcribe

import (
	"strings"

	"audioscribe/internal/apperr"
	"audioscribe/internal/model"
	"audioscribe/internal/stt"
)

// Languages holds the configured language tags.
type Languages struct {
	Source    string
	Secondary string
}

var encodings = map[string]stt.Encoding{
	"wav":  stt.EncodingLinear16,
	"wave": stt.EncodingLinear16,
	"mp3":  stt.EncodingMP3,
	"mp4":  stt.EncodingMP3,
	"m4a":  stt.EncodingMP3,
	"flac": stt.EncodingFLAC,
	"ogg":  stt.EncodingOggOpus,
}

// DefaultEncoding is used for formats without a known mapping.
const DefaultEncoding = stt.EncodingMP3

// NormalizeFormat reduces a declared format to a bare lowercase name:
// ".MP3", "audio/mpeg" and "audio/x-wav" become "mp3", "mp3" and "wav".
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if i := strings.IndexByte(f, ';'); i >= 0 {
		f = strings.TrimSpace(f[:i])
	}
	if i := strings.LastIndexByte(f, '/'); i >= 0 {
		f = f[i+1:]
	}
	f = strings.TrimPrefix(f, ".")
	f = strings.TrimPrefix(f, "x-")

	switch f {
	case "mpeg", "mpeg3", "mpga":
		return "mp3"
	case "vnd.wave":
		return "wav"
	}
	return f
}

// ResolveEncoding maps a declared format to the provider encoding. Unknown
// formats resolve to DefaultEncoding with known=false; they are never an error.
func ResolveEncoding(format string) (stt.Encoding, bool) {
	if enc, ok := encodings[NormalizeFormat(format)]; ok {
		return enc, true
	}
	return DefaultEncoding, false
}

// ParseLanguageMode validates a requested mode. Empty selects mixed.
func ParseLanguageMode(s string) (model.LanguageMode, error) {
	switch m := model.LanguageMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return model.ModeMixed, nil
	case model.ModeSource, model.ModeSecondary, model.ModeMixed:
		return m, nil
	default:
		return "", apperr.Validationf("Invalid languageMode %q. Expected source, secondary or mixed.", s)
	}
}

// ResolveLanguageConfig maps a mode to the provider language parameters.
// Single-language modes set one tag; mixed sets the source tag with the
// secondary as an alternate so the provider can switch within one request.
func ResolveLanguageConfig(mode model.LanguageMode, langs Languages) (stt.LanguageConfig, error) {
	switch mode {
	case model.ModeSource:
		return stt.LanguageConfig{Code: langs.Source}, nil
	case model.ModeSecondary:
		return stt.LanguageConfig{Code: langs.Secondary}, nil
	case model.ModeMixed, "":
		return stt.LanguageConfig{Code: langs.Source, Alternates: []string{langs.Secondary}}, nil
	default:
		return stt.LanguageConfig{}, apperr.Validationf("Invalid languageMode %q. Expected source, secondary or mixed.", mode)
	}
}
