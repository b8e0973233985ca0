package table

import (
	"errors"
	"fmt"
)

// ErrArity indicates a row whose cell count differs from the schema width.
var ErrArity = errors.New("cell count does not match schema")

// MalformedCellError represents a cell that does not have the shape its
// schema position expects.
type MalformedCellError struct {
	Kind   CellKind
	Reason string
}

func (e *MalformedCellError) Error() string {
	return fmt.Sprintf("malformed %s cell: %s", e.Kind, e.Reason)
}

// RowDecodeError represents a row that could not be decoded against the
// active schema. Position is -1 when the row as a whole is rejected.
type RowDecodeError struct {
	Row      int
	Position int
	Field    string
	Err      error
}

func (e *RowDecodeError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, position %d (%s): %v", e.Row, e.Position, e.Field, e.Err)
}

func (e *RowDecodeError) Unwrap() error {
	return e.Err
}

// MissingRowDataError represents a row after the header that carries no
// data cells.
type MissingRowDataError struct {
	Row int
}

func (e *MissingRowDataError) Error() string {
	return fmt.Sprintf("row %d: row did not contain the expected values", e.Row)
}
