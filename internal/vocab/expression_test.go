package vocab

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTranslation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		word string
		want string
	}{
		{"proper name falls back to word", "proper name", "Madrid", "Madrid"},
		{"regular translation kept", "cat", "gato", "cat"},
		{"sentinel match is exact", "Proper name", "Madrid", "Proper name"},
		{"sentinel with padding is not matched", " proper name", "Madrid", " proper name"},
		{"empty stays empty", "", "gato", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTranslation(tt.raw, tt.word))
		})
	}
}

func TestExpressionValidate(t *testing.T) {
	valid := Expression{Word: "gato", Translation: "cat", Audio: "x.mp3"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Expression)
	}{
		{"missing word", func(e *Expression) { e.Word = "" }},
		{"missing translation", func(e *Expression) { e.Translation = "" }},
		{"missing audio", func(e *Expression) { e.Audio = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.modify(&e)
			err := e.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIncomplete))
		})
	}
}

func TestExpressionHeadword(t *testing.T) {
	assert.Equal(t, "el gato", Expression{Prefix: "el", Word: "gato"}.Headword())
	assert.Equal(t, "gato", Expression{Word: "gato"}.Headword())
}

func TestExpressionRecord(t *testing.T) {
	e := Expression{
		Prefix:        "el",
		Word:          "gato",
		Transcription: "ˈɡato",
		Translation:   "cat",
		Audio:         "x.mp3",
	}
	assert.Equal(t, []string{"el", "gato", "ˈɡato", "", "cat", "x.mp3"}, e.Record())
}
