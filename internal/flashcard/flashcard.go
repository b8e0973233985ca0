// Package flashcard projects Expressions into export-ready flashcards.
// Projection is pure: the same Expression and Mode always produce the same
// Flashcard.
package flashcard

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"codeberg.org/snonux/vocabtable/internal/vocab"
)

// Mode selects how the back of a card is composed.
type Mode int

const (
	// ModeLineBreak joins the back fields with <br> and exports the sound
	// marker as a separate field.
	ModeLineBreak Mode = iota
	// ModeHTMLBlock wraps each back field in <p> and appends the sound
	// marker to the back field.
	ModeHTMLBlock
)

// ParseMode parses a mode name as used in configuration.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "linebreak":
		return ModeLineBreak, nil
	case "html":
		return ModeHTMLBlock, nil
	default:
		return 0, fmt.Errorf("unknown flashcard mode %q (must be linebreak or html)", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeLineBreak:
		return "linebreak"
	case ModeHTMLBlock:
		return "html"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// InvalidAudioReferenceError is returned when no filename can be extracted
// from an audio reference.
type InvalidAudioReferenceError struct {
	Reference string
	Reason    string
}

func (e *InvalidAudioReferenceError) Error() string {
	return fmt.Sprintf("invalid audio reference %q: %s", e.Reference, e.Reason)
}

// Flashcard is the export form of one Expression.
type Flashcard struct {
	Mode  Mode
	Front string
	Back  string
	Sound string // [sound:<filename>]
	// AudioFile is the filename the sound marker points to.
	AudioFile string
}

// Record returns the export fields: front, back and sound in line-break
// mode, front and back with the sound marker appended in HTML-block mode.
func (c Flashcard) Record() []string {
	if c.Mode == ModeHTMLBlock {
		return []string{c.Front, c.Back + c.Sound}
	}
	return []string{c.Front, c.Back, c.Sound}
}

// Projector turns Expressions into Flashcards.
type Projector struct {
	mode Mode
}

// NewProjector creates a projector for the given mode.
func NewProjector(mode Mode) *Projector {
	return &Projector{mode: mode}
}

// Mode returns the projector's mode.
func (p *Projector) Mode() Mode {
	return p.mode
}

// Project builds the flashcard for one expression.
func (p *Projector) Project(e vocab.Expression) (Flashcard, error) {
	filename, err := AudioFilename(e.Audio)
	if err != nil {
		return Flashcard{}, err
	}

	return Flashcard{
		Mode:      p.mode,
		Front:     e.Translation,
		Back:      p.back(e),
		Sound:     SoundMarker(filename),
		AudioFile: filename,
	}, nil
}

// ProjectAll projects every expression in order. The first failure aborts
// the projection.
func (p *Projector) ProjectAll(expressions []vocab.Expression) ([]Flashcard, error) {
	cards := make([]Flashcard, 0, len(expressions))
	for i, e := range expressions {
		card, err := p.Project(e)
		if err != nil {
			return nil, fmt.Errorf("expression %d (%s): %w", i, e.Word, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (p *Projector) back(e vocab.Expression) string {
	fields := []string{
		html.EscapeString(e.Headword()),
		html.EscapeString(e.Transcription),
		html.EscapeString(e.Inflection),
	}

	if p.mode == ModeHTMLBlock {
		var b strings.Builder
		for _, f := range fields {
			b.WriteString("<p>")
			b.WriteString(f)
			b.WriteString("</p>")
		}
		return b.String()
	}
	return strings.Join(fields, "<br>")
}

// AudioFilename returns the last non-empty path segment of an audio
// reference.
func AudioFilename(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", &InvalidAudioReferenceError{Reference: ref, Reason: err.Error()}
	}

	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i], nil
		}
	}
	return "", &InvalidAudioReferenceError{Reference: ref, Reason: "no path segments"}
}

// SoundMarker formats the Anki sound reference for a media filename.
func SoundMarker(filename string) string {
	return fmt.Sprintf("[sound:%s]", filename)
}
