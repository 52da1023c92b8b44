// Package langdetect guesses the natural language of article text.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the smallest sample worth classifying.
const minLetters = 6

// DefaultLanguages covers the outlets the pipeline usually reads.
var DefaultLanguages = []lingua.Language{
	lingua.Spanish,
	lingua.English,
	lingua.Catalan,
	lingua.Portuguese,
	lingua.French,
	lingua.German,
	lingua.Italian,
}

// Detector wraps a lingua detector that is built on first use.
type Detector struct {
	languages []lingua.Language

	once     sync.Once
	detector lingua.LanguageDetector
}

// New returns a detector restricted to languages, or to DefaultLanguages
// when none are given. Use lingua.AllLanguages() for every language.
func New(languages ...lingua.Language) *Detector {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	return &Detector{languages: append([]lingua.Language(nil), languages...)}
}

// Detect returns the English name of the language of text, e.g. "Spanish".
func (d *Detector) Detect(text string) (string, bool) {
	language, ok := d.detect(text)
	if !ok {
		return "", false
	}
	return language.String(), true
}

// DetectISO6391 returns the two-letter ISO 639-1 code of the language of
// text, or "" when it cannot be determined.
func (d *Detector) DetectISO6391(text string) string {
	language, ok := d.detect(text)
	if !ok {
		return ""
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func (d *Detector) detect(text string) (lingua.Language, bool) {
	sample := strings.TrimSpace(text)
	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minLetters {
		return lingua.Unknown, false
	}
	return d.get().DetectLanguageOf(sample)
}

func (d *Detector) get() lingua.LanguageDetector {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(d.languages...).
			Build()
	})
	return d.detector
}
