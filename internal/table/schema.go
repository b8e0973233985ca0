package table

import (
	"fmt"
	"sort"
)

// RowWidth is the number of cells every schema variant describes.
const RowWidth = 6

// Schema positions, in row order.
const (
	PosPrefix = iota
	PosHeadword
	PosTranscription
	PosInflection
	PosTranslation
	PosReserved
)

// Position describes what one column of a row must contain.
type Position struct {
	Field    string
	Kind     CellKind
	Required bool
}

// Schema is a versioned positional layout a row must match.
type Schema struct {
	Version   string
	Positions []Position
	// TrimSpace trims surrounding whitespace from cell text before the
	// presence check.
	TrimSpace bool
}

// SchemaV1 is the first table layout: transcription is mandatory.
var SchemaV1 = Schema{
	Version: "v1",
	Positions: []Position{
		{Field: "prefix", Kind: KindText},
		{Field: "headword", Kind: KindAudio, Required: true},
		{Field: "transcription", Kind: KindText, Required: true},
		{Field: "inflection", Kind: KindText},
		{Field: "translation", Kind: KindText, Required: true},
		{Field: "reserved", Kind: KindText},
	},
}

// SchemaV2 relaxes the transcription column.
var SchemaV2 = Schema{
	Version: "v2",
	Positions: []Position{
		{Field: "prefix", Kind: KindText},
		{Field: "headword", Kind: KindAudio, Required: true},
		{Field: "transcription", Kind: KindText},
		{Field: "inflection", Kind: KindText},
		{Field: "translation", Kind: KindText, Required: true},
		{Field: "reserved", Kind: KindText},
	},
}

var schemas = map[string]Schema{
	SchemaV1.Version: SchemaV1,
	SchemaV2.Version: SchemaV2,
}

// LookupSchema returns the built-in schema with the given version.
func LookupSchema(version string) (Schema, error) {
	s, ok := schemas[version]
	if !ok {
		return Schema{}, fmt.Errorf("unknown schema version %q (known: %v)", version, SchemaVersions())
	}
	return s, nil
}

// SchemaVersions lists the built-in schema versions in sorted order.
func SchemaVersions() []string {
	versions := make([]string, 0, len(schemas))
	for v := range schemas {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// Validate checks that the schema can be mapped onto an Expression.
func (s Schema) Validate() error {
	if len(s.Positions) != RowWidth {
		return fmt.Errorf("schema %s: has %d positions, want %d", s.Version, len(s.Positions), RowWidth)
	}
	for i, p := range s.Positions {
		if i == PosHeadword {
			if p.Kind != KindAudio {
				return fmt.Errorf("schema %s: position %d must be an audio cell", s.Version, i)
			}
			continue
		}
		if p.Kind != KindText {
			return fmt.Errorf("schema %s: position %d must be a text cell", s.Version, i)
		}
	}
	return nil
}

// parse converts one raw cell according to the position.
func (p Position) parse(raw RawCell, trim bool) (Cell, error) {
	switch p.Kind {
	case KindAudio:
		if !p.Required && raw.Text == "" && len(raw.AudioSources) == 0 {
			return Cell{Kind: KindAudio}, nil
		}
		return ParseAudio(raw, trim)
	default:
		if p.Required {
			return ParseRequiredText(raw, trim)
		}
		return ParseOptionalText(raw, trim), nil
	}
}
