package table

import "strings"

// CellKind is the variant a schema position expects.
type CellKind int

const (
	// KindText is a text cell. Whether it may be absent is decided by the
	// schema position.
	KindText CellKind = iota
	// KindAudio is a cell holding one audio pointer and its label.
	KindAudio
)

func (k CellKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// RawCell is the content of one <td> as read from markup.
type RawCell struct {
	// Text is the concatenated text content. Empty means absent.
	Text string
	// AudioSources holds the src of every embedded audio element, in
	// document order. An element without a source contributes "".
	AudioSources []string
}

// Cell is a typed, parsed cell.
type Cell struct {
	Kind  CellKind
	Text  string // text content, or the label of an audio cell
	Audio string // audio reference, audio cells only
}

// Present reports whether the cell carries a value.
func (c Cell) Present() bool {
	return c.Text != "" || c.Audio != ""
}

// ParseRequiredText parses a text cell that must have content.
func ParseRequiredText(raw RawCell, trim bool) (Cell, error) {
	text := cellText(raw.Text, trim)
	if text == "" {
		return Cell{}, &MalformedCellError{Kind: KindText, Reason: "missing text content"}
	}
	return Cell{Kind: KindText, Text: text}, nil
}

// ParseOptionalText parses a text cell that may be empty. It never fails.
func ParseOptionalText(raw RawCell, trim bool) Cell {
	return Cell{Kind: KindText, Text: cellText(raw.Text, trim)}
}

// ParseAudio parses a cell that must contain exactly one audio pointer and a
// label.
func ParseAudio(raw RawCell, trim bool) (Cell, error) {
	switch len(raw.AudioSources) {
	case 0:
		return Cell{}, &MalformedCellError{Kind: KindAudio, Reason: "missing audio element"}
	case 1:
	default:
		return Cell{}, &MalformedCellError{Kind: KindAudio, Reason: "more than one audio element"}
	}

	src := strings.TrimSpace(raw.AudioSources[0])
	if src == "" {
		return Cell{}, &MalformedCellError{Kind: KindAudio, Reason: "missing audio src attribute"}
	}

	label := cellText(raw.Text, trim)
	if label == "" {
		return Cell{}, &MalformedCellError{Kind: KindAudio, Reason: "missing label text"}
	}

	return Cell{Kind: KindAudio, Text: label, Audio: src}, nil
}

func cellText(s string, trim bool) string {
	if trim {
		return strings.TrimSpace(s)
	}
	return s
}
