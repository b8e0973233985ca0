package flashcard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/vocabtable/internal/vocab"
)

var gato = vocab.Expression{
	Prefix:        "el",
	Word:          "gato",
	Transcription: "ˈɡato",
	Translation:   "cat",
	Audio:         "x.mp3",
}

func TestProjectLineBreak(t *testing.T) {
	card, err := NewProjector(ModeLineBreak).Project(gato)
	require.NoError(t, err)

	assert.Equal(t, "cat", card.Front)
	assert.Equal(t, "el gato<br>ˈɡato<br>", card.Back)
	assert.Equal(t, "[sound:x.mp3]", card.Sound)
	assert.Equal(t, "x.mp3", card.AudioFile)
	assert.Equal(t, []string{"cat", "el gato<br>ˈɡato<br>", "[sound:x.mp3]"}, card.Record())
}

func TestProjectHTMLBlock(t *testing.T) {
	card, err := NewProjector(ModeHTMLBlock).Project(gato)
	require.NoError(t, err)

	assert.Equal(t, "<p>el gato</p><p>ˈɡato</p><p></p>", card.Back)
	assert.Equal(t, []string{"cat", "<p>el gato</p><p>ˈɡato</p><p></p>[sound:x.mp3]"}, card.Record())
}

func TestProjectBack(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		expr vocab.Expression
		want string
	}{
		{
			name: "no prefix has no leading space",
			mode: ModeLineBreak,
			expr: vocab.Expression{Word: "Madrid", Translation: "Madrid", Audio: "m.mp3"},
			want: "Madrid<br><br>",
		},
		{
			name: "all fields",
			mode: ModeLineBreak,
			expr: vocab.Expression{Prefix: "der", Word: "Hund", Transcription: "hʊnt", Inflection: "-e", Translation: "dog", Audio: "h.mp3"},
			want: "der Hund<br>hʊnt<br>-e",
		},
		{
			name: "empty blocks are kept",
			mode: ModeHTMLBlock,
			expr: vocab.Expression{Word: "Madrid", Translation: "Madrid", Audio: "m.mp3"},
			want: "<p>Madrid</p><p></p><p></p>",
		},
		{
			name: "markup in fields is escaped",
			mode: ModeHTMLBlock,
			expr: vocab.Expression{Word: "R&B", Inflection: "<pl>", Translation: "R&B", Audio: "r.mp3"},
			want: "<p>R&amp;B</p><p></p><p>&lt;pl&gt;</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := NewProjector(tt.mode).Project(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, card.Back)
		})
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	for _, mode := range []Mode{ModeLineBreak, ModeHTMLBlock} {
		p := NewProjector(mode)
		first, err := p.Project(gato)
		require.NoError(t, err)
		second, err := p.Project(gato)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestAudioFilename(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "https://example.com/media/abc123.mp3", want: "abc123.mp3"},
		{ref: "https://example.com/media/abc123.mp3?v=2", want: "abc123.mp3"},
		{ref: "https://example.com/media/", want: "media"},
		{ref: "x.mp3", want: "x.mp3"},
		{ref: "../audio/x.mp3", want: "x.mp3"},
		{ref: "https://example.com", wantErr: true},
		{ref: "https://example.com/", wantErr: true},
		{ref: "", wantErr: true},
		{ref: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := AudioFilename(tt.ref)
			if tt.wantErr {
				var refErr *InvalidAudioReferenceError
				require.True(t, errors.As(err, &refErr), "got %v", err)
				assert.Equal(t, tt.ref, refErr.Reference)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectInvalidAudio(t *testing.T) {
	e := gato
	e.Audio = "https://example.com"

	_, err := NewProjector(ModeLineBreak).Project(e)
	var refErr *InvalidAudioReferenceError
	assert.True(t, errors.As(err, &refErr))
}

func TestProjectAll(t *testing.T) {
	casa := vocab.Expression{Prefix: "la", Word: "casa", Transcription: "ˈkasa", Translation: "house", Audio: "https://example.com/a/casa.mp3"}

	cards, err := NewProjector(ModeLineBreak).ProjectAll([]vocab.Expression{gato, casa})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "cat", cards[0].Front)
	assert.Equal(t, "[sound:casa.mp3]", cards[1].Sound)

	bad := casa
	bad.Audio = "https://example.com"
	cards, err = NewProjector(ModeLineBreak).ProjectAll([]vocab.Expression{gato, bad})
	assert.Nil(t, cards)
	var refErr *InvalidAudioReferenceError
	assert.True(t, errors.As(err, &refErr))
	assert.Contains(t, err.Error(), "expression 1 (casa)")
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("linebreak")
	require.NoError(t, err)
	assert.Equal(t, ModeLineBreak, m)

	m, err = ParseMode("html")
	require.NoError(t, err)
	assert.Equal(t, ModeHTMLBlock, m)

	_, err = ParseMode("markdown")
	assert.Error(t, err)

	assert.Equal(t, "html", ModeHTMLBlock.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
