// Package vocab defines the Expression, the validated vocabulary entry
// decoded from a table row.
package vocab

import (
	"errors"
	"fmt"
)

// ProperNameSentinel is the translation text used by the source tables for
// names that have no translation. Such entries translate to the headword.
// The value depends on the vocabulary set and may have to move into
// configuration if another source uses a different marker.
const ProperNameSentinel = "proper name"

// ErrIncomplete is returned by Validate when a required field is empty.
var ErrIncomplete = errors.New("incomplete expression")

// Expression is one vocabulary entry
type Expression struct {
	Prefix        string // e.g. grammatical article, optional
	Word          string
	Transcription string // optional
	Inflection    string // optional
	Translation   string
	Audio         string // absolute or relative reference to the audio resource
}

// ResolveTranslation applies the proper-name rule: raw equal to
// ProperNameSentinel yields word, anything else is returned verbatim.
func ResolveTranslation(raw, word string) string {
	if raw == ProperNameSentinel {
		return word
	}
	return raw
}

// Validate checks that word, translation and audio are populated.
func (e Expression) Validate() error {
	switch {
	case e.Word == "":
		return fmt.Errorf("%w: word is empty", ErrIncomplete)
	case e.Translation == "":
		return fmt.Errorf("%w: translation is empty", ErrIncomplete)
	case e.Audio == "":
		return fmt.Errorf("%w: audio reference is empty", ErrIncomplete)
	}
	return nil
}

// Headword returns the word with its prefix, separated by a space when a
// prefix is present.
func (e Expression) Headword() string {
	if e.Prefix == "" {
		return e.Word
	}
	return e.Prefix + " " + e.Word
}

// Record returns the expression as export fields in declaration order.
func (e Expression) Record() []string {
	return []string{e.Prefix, e.Word, e.Transcription, e.Inflection, e.Translation, e.Audio}
}
