package table

import (
	"fmt"

	"codeberg.org/snonux/vocabtable/internal/vocab"
)

// DecodedRow holds the typed cells of one row, one per schema position.
type DecodedRow [RowWidth]Cell

// Expression maps the decoded cells onto an Expression. The reserved
// position is ignored.
func (r DecodedRow) Expression() vocab.Expression {
	word := r[PosHeadword].Text
	return vocab.Expression{
		Prefix:        r[PosPrefix].Text,
		Word:          word,
		Transcription: r[PosTranscription].Text,
		Inflection:    r[PosInflection].Text,
		Translation:   vocab.ResolveTranslation(r[PosTranslation].Text, word),
		Audio:         r[PosHeadword].Audio,
	}
}

// Decoder decodes rows and tables against one schema.
type Decoder struct {
	schema Schema
}

// NewDecoder creates a decoder for the given schema.
func NewDecoder(schema Schema) (*Decoder, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{schema: schema}, nil
}

// Schema returns the schema the decoder was created with.
func (d *Decoder) Schema() Schema {
	return d.schema
}

// DecodeRow decodes the raw cells of the row at index. The cell count must
// equal the schema width exactly; rows are never padded or truncated.
func (d *Decoder) DecodeRow(index int, cells []RawCell) (DecodedRow, error) {
	var row DecodedRow

	if len(cells) != len(d.schema.Positions) {
		return row, &RowDecodeError{
			Row:      index,
			Position: -1,
			Err:      fmt.Errorf("%w: got %d cells, want %d", ErrArity, len(cells), len(d.schema.Positions)),
		}
	}

	for i, pos := range d.schema.Positions {
		cell, err := pos.parse(cells[i], d.schema.TrimSpace)
		if err != nil {
			return row, &RowDecodeError{Row: index, Position: i, Field: pos.Field, Err: err}
		}
		row[i] = cell
	}

	return row, nil
}
