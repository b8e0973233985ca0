package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/snonux/vocabtable/internal/flashcard"
	"codeberg.org/snonux/vocabtable/internal/vocab"
)

// PersistenceError represents an export file that could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// WriterOptions configures the delimited export
type WriterOptions struct {
	OutputPath string // Output file path
	Delimiter  rune   // Field separator
}

// DefaultWriterOptions returns sensible defaults
func DefaultWriterOptions() *WriterOptions {
	return &WriterOptions{
		OutputPath: "anki_import.csv",
		Delimiter:  ';',
	}
}

// Writer writes one record per line, without a header row
type Writer struct {
	options *WriterOptions
}

// NewWriter creates a new export writer
func NewWriter(options *WriterOptions) *Writer {
	if options == nil {
		options = DefaultWriterOptions()
	}
	if options.Delimiter == 0 {
		options.Delimiter = ';'
	}
	return &Writer{options: options}
}

// OutputPath returns the file the writer writes to
func (w *Writer) OutputPath() string {
	return w.options.OutputPath
}

// WriteFlashcards writes one line per card, in order
func (w *Writer) WriteFlashcards(cards []flashcard.Flashcard) error {
	records := make([][]string, 0, len(cards))
	for _, card := range cards {
		records = append(records, card.Record())
	}
	return w.writeRecords(records)
}

// WriteExpressions writes the raw decoded expressions, for inspection runs
func (w *Writer) WriteExpressions(expressions []vocab.Expression) error {
	records := make([][]string, 0, len(expressions))
	for _, e := range expressions {
		records = append(records, e.Record())
	}
	return w.writeRecords(records)
}

// writeRecords writes to a temporary file and renames it into place, so a
// failed export never leaves a partial file behind
func (w *Writer) writeRecords(records [][]string) error {
	outputPath := w.options.OutputPath

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*")
	if err != nil {
		return &PersistenceError{Path: outputPath, Err: err}
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	writer.Comma = w.options.Delimiter

	if err := writer.WriteAll(records); err != nil {
		tmp.Close()
		return &PersistenceError{Path: outputPath, Err: fmt.Errorf("failed to write records: %w", err)}
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return &PersistenceError{Path: outputPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Path: outputPath, Err: err}
	}

	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return &PersistenceError{Path: outputPath, Err: err}
	}
	return nil
}
