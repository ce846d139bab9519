package model

import (
	"mime"
	"path/filepath"
	"strings"
)

// supportedMediaTypes maps each accepted upload media type to the file
// extension used when the original name carries none.
var supportedMediaTypes = map[string]string{
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/mp4":    "m4a",
	"audio/m4a":    "m4a",
	"audio/x-m4a":  "m4a",
	"audio/wav":    "wav",
	"audio/wave":   "wav",
	"audio/x-wav":  "wav",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
	"audio/ogg":    "ogg",
	"audio/webm":   "webm",
	"video/mp4":    "mp4",
}

// NormalizeMediaType lower-cases a media type and drops its parameters
// ("audio/webm;codecs=opus" -> "audio/webm").
func NormalizeMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// IsSupportedMediaType reports whether uploads of this type are accepted.
func IsSupportedMediaType(contentType string) bool {
	_, ok := supportedMediaTypes[NormalizeMediaType(contentType)]
	return ok
}

// ExtensionFor returns the default extension for a supported media type, or "".
func ExtensionFor(contentType string) string {
	return supportedMediaTypes[NormalizeMediaType(contentType)]
}

// MediaTypeFromFileName guesses the media type from a file extension. Browsers
// send application/octet-stream for some audio files; this recovers the type.
func MediaTypeFromFileName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/m4a"
	case ".mp4":
		return "audio/mp4"
	case ".wav", ".wave":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".ogg", ".oga", ".opus":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	default:
		return ""
	}
}

// DeclaredMediaType returns the header type, falling back to the file
// extension when the header is absent or generic.
func DeclaredMediaType(header, fileName string) string {
	mt := NormalizeMediaType(header)
	if mt == "" || mt == "application/octet-stream" {
		if guessed := MediaTypeFromFileName(fileName); guessed != "" {
			return guessed
		}
	}
	return mt
}
