package processor

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/vocabtable/internal/anki"
	"codeberg.org/snonux/vocabtable/internal/audio"
	"codeberg.org/snonux/vocabtable/internal/flashcard"
	"codeberg.org/snonux/vocabtable/internal/markup"
	"codeberg.org/snonux/vocabtable/internal/table"
	"codeberg.org/snonux/vocabtable/internal/vocab"
)

// Processing stages of one input file
const (
	StageIngest     = "ingest"
	StageDecode     = "decode"
	StageTranscribe = "transcribe"
	StageProject    = "project"
	StageAudio      = "audio"
	StageExport     = "export"
)

// Error categories reported by FileError.Category
const (
	CategorySchema      = "schema"
	CategoryIngestion   = "ingestion"
	CategoryTransport   = "transport"
	CategoryPersistence = "persistence"
	CategoryProjection  = "projection"
)

// FileError is the failure of one input file at one stage.
type FileError struct {
	Path  string
	Stage string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Category classifies the underlying error.
func (e *FileError) Category() string {
	var (
		malformed  *table.MalformedCellError
		rowErr     *table.RowDecodeError
		missing    *table.MissingRowDataError
		ingestion  *markup.IngestionError
		transport  *audio.TransportError
		audioStore *audio.PersistenceError
		export     *anki.PersistenceError
		audioRef   *flashcard.InvalidAudioReferenceError
	)

	switch {
	case errors.As(e.Err, &ingestion):
		return CategoryIngestion
	case errors.As(e.Err, &malformed), errors.As(e.Err, &rowErr),
		errors.As(e.Err, &missing), errors.Is(e.Err, vocab.ErrIncomplete):
		return CategorySchema
	case errors.As(e.Err, &audioRef):
		return CategoryProjection
	case errors.As(e.Err, &transport):
		return CategoryTransport
	case errors.As(e.Err, &audioStore), errors.As(e.Err, &export):
		return CategoryPersistence
	case e.Stage == StageTranscribe:
		return CategoryTransport
	default:
		return e.Stage
	}
}
