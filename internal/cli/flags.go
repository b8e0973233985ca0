package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	InputDir  string `validate:"required"`
	OutputDir string `validate:"required"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	Archive   bool

	// Export flags
	Mode     string `validate:"oneof=linebreak html"`
	Schema   string `validate:"oneof=v1 v2"`
	Inspect  bool
	APKG     bool
	DeckName string `validate:"required_if=APKG true"`

	// Audio flags
	SkipAudio    bool
	AudioBaseURL string        `validate:"omitempty,url"`
	AudioTimeout time.Duration `validate:"gt=0"`
	AudioMaxSize int64         `validate:"gte=0"`

	// Transcription flags
	FillTranscription bool
	OpenAIModel       string `validate:"required_if=FillTranscription true"`
	Language          string
	ListModels        bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		InputDir:     ".",
		OutputDir:    "out",
		LogLevel:     "info",
		Mode:         "linebreak",
		Schema:       "v1",
		DeckName:     "Vocabulary",
		AudioTimeout: 30 * time.Second,
		AudioMaxSize: 10 * 1024 * 1024,
		OpenAIModel:  "gpt-4o",
	}
}

// Validate checks the resolved flag values
func (f *Flags) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s=%v fails %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s=%v fails %s", fe.Field(), fe.Value(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
