// Package table decodes vocabulary tables into Expressions. Rows are
// matched against a versioned positional Schema; a table decodes completely
// or not at all.
package table

import "codeberg.org/snonux/vocabtable/internal/vocab"

// Row is one table row. Cells holds the data cells only; header cells are
// not data.
type Row struct {
	Cells []RawCell
}

// HasData reports whether the row carries any data cells.
func (r Row) HasData() bool {
	return len(r.Cells) > 0
}

// Table is an ordered list of rows. Row 0 is the header.
type Table struct {
	Rows []Row
}

// Decode skips the header row and decodes every remaining row, in order.
// The first row that fails aborts the decode and no expressions are
// returned.
func (d *Decoder) Decode(t Table) ([]vocab.Expression, error) {
	if len(t.Rows) <= 1 {
		return []vocab.Expression{}, nil
	}

	expressions := make([]vocab.Expression, 0, len(t.Rows)-1)
	for i, row := range t.Rows[1:] {
		index := i + 1
		if !row.HasData() {
			return nil, &MissingRowDataError{Row: index}
		}

		decoded, err := d.DecodeRow(index, row.Cells)
		if err != nil {
			return nil, err
		}

		expr := decoded.Expression()
		if err := expr.Validate(); err != nil {
			return nil, &RowDecodeError{Row: index, Position: -1, Err: err}
		}
		expressions = append(expressions, expr)
	}

	return expressions, nil
}
