package storage

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func fixedGenerator(id string) *KeyGenerator {
	return &KeyGenerator{
		Now:      func() time.Time { return time.UnixMilli(1700000000123) },
		RandomID: func() string { return id },
	}
}

func TestKeyGenerator_Generate(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        string
	}{
		{"plain", "meeting.mp3", "audio/mpeg", "audio/1700000000123-abc123-meeting.mp3"},
		{"spaces and unicode", "बैठक नोट्स (final).WAV", "audio/wav", "audio/1700000000123-abc123-final.wav"},
		{"no extension", "voice memo", "audio/webm;codecs=opus", "audio/1700000000123-abc123-voicememo.webm"},
		{"path traversal", "../../etc/passwd.ogg", "audio/ogg", "audio/1700000000123-abc123-passwd.ogg"},
		{"empty name", "", "audio/flac", "audio/1700000000123-abc123-audio.flac"},
		{"unknown type", "blob", "application/octet-stream", "audio/1700000000123-abc123-blob.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixedGenerator("abc123").Generate(tt.fileName, tt.contentType)
			if got != tt.want {
				t.Errorf("Generate(%q, %q) = %q, want %q", tt.fileName, tt.contentType, got, tt.want)
			}
		})
	}
}

func TestKeyGenerator_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 120) + ".m4a"
	key := fixedGenerator("id").Generate(long, "audio/m4a")

	want := "audio/1700000000123-id-" + strings.Repeat("a", 50) + ".m4a"
	if key != want {
		t.Errorf("got %q, want %q", key, want)
	}
}

func TestKeyGenerator_DistinctKeysForIdenticalInput(t *testing.T) {
	g := NewKeyGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := g.Generate("same.mp3", "audio/mpeg")
		if seen[key] {
			t.Fatalf("duplicate key generated: %s", key)
		}
		seen[key] = true
	}
}

func TestKeyGenerator_KeyIsURISafe(t *testing.T) {
	safe := regexp.MustCompile(`^audio/[A-Za-z0-9.-]+$`)
	key := NewKeyGenerator().Generate("weird name?#%&=+.mp3", "audio/mpeg")
	if !safe.MatchString(key) {
		t.Errorf("key %q contains unsafe characters", key)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"hello world": "helloworld",
		"a_b-c.d":     "ab-c.d",
		"...":         "audio",
		"###":         "audio",
	}
	for in, want := range tests {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
