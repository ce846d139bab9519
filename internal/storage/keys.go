package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"audioscribe/internal/model"

	"github.com/google/uuid"
)

const (
	KeyPrefix      = "audio/"
	maxBaseNameLen = 50
	fallbackName   = "audio"
	fallbackExt    = "bin"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// KeyGenerator builds collision-resistant object keys of the form
// audio/<unix-millis>-<random-id>-<sanitized-name>.<ext>.
type KeyGenerator struct {
	Now      func() time.Time
	RandomID func() string
}

// NewKeyGenerator returns a generator using the wall clock and random UUIDs.
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{
		Now:      time.Now,
		RandomID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
	}
}

// Generate returns a new key for a file with the given name and media type.
func (g *KeyGenerator) Generate(fileName, contentType string) string {
	base, ext := SplitFileName(fileName)
	if ext == "" {
		ext = model.ExtensionFor(contentType)
	}
	if ext == "" {
		ext = fallbackExt
	}
	return fmt.Sprintf("%s%d-%s-%s.%s", KeyPrefix, g.Now().UnixMilli(), g.RandomID(), base, ext)
}

// SplitFileName returns the sanitized base name and lower-cased extension of
// a client-supplied file name.
func SplitFileName(fileName string) (base, ext string) {
	name := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	ext = unsafeKeyChars.ReplaceAllString(ext, "")
	base = SanitizeName(strings.TrimSuffix(name, filepath.Ext(name)))
	return base, ext
}

// SanitizeName strips characters outside [A-Za-z0-9.-] and bounds the length.
func SanitizeName(name string) string {
	name = unsafeKeyChars.ReplaceAllString(name, "")
	name = strings.Trim(name, ".")
	if len(name) > maxBaseNameLen {
		name = name[:maxBaseNameLen]
	}
	if name == "" {
		return fallbackName
	}
	return name
}
