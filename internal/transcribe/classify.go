package transcribe

import (
	"strings"
	"unicode"

	"audioscribe/internal/model"
)

// scripts maps a primary language subtag to the Unicode script it is written in.
// Languages written in Latin script are absent: counting them against Latin
// characters says nothing.
var scripts = map[string]*unicode.RangeTable{
	"hi": unicode.Devanagari,
	"mr": unicode.Devanagari,
	"ne": unicode.Devanagari,
	"bn": unicode.Bengali,
	"pa": unicode.Gurmukhi,
	"gu": unicode.Gujarati,
	"ta": unicode.Tamil,
	"te": unicode.Telugu,
	"kn": unicode.Kannada,
	"ml": unicode.Malayalam,
	"or": unicode.Oriya,
	"si": unicode.Sinhala,
	"as": unicode.Bengali,
	"sa": unicode.Devanagari,
	"ar": unicode.Arabic,
	"ur": unicode.Arabic,
	"fa": unicode.Arabic,
	"he": unicode.Hebrew,
	"ru": unicode.Cyrillic,
	"uk": unicode.Cyrillic,
	"el": unicode.Greek,
	"th": unicode.Thai,
	"lo": unicode.Lao,
	"km": unicode.Khmer,
	"my": unicode.Myanmar,
	"ka": unicode.Georgian,
	"hy": unicode.Armenian,
	"am": unicode.Ethiopic,
	"dv": unicode.Thaana,
	"zh": unicode.Han,
	"ja": unicode.Han,
	"ko": unicode.Hangul,
}

// ScriptFor returns the script table for a BCP-47 tag, or nil.
func ScriptFor(tag string) *unicode.RangeTable {
	base, _, _ := strings.Cut(strings.ToLower(tag), "-")
	return scripts[base]
}

// ClassifyPrimaryLanguage guesses which language dominates a mixed transcript
// by counting source-script letters against Latin letters. The majority
// wins; a tie yields model.PrimaryMixed. When the source language has no
// distinguishing script the source tag is returned.
func ClassifyPrimaryLanguage(transcript, source, secondary string) string {
	script := ScriptFor(source)
	if script == nil {
		return source
	}

	var native, latin int
	for _, r := range transcript {
		switch {
		case unicode.Is(script, r):
			native++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	switch {
	case native > latin:
		return source
	case latin > native:
		return secondary
	default:
		return model.PrimaryMixed
	}
}
