package markup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/vocabtable/internal/table"
)

const fragment = `<tbody>
<tr><th>Art.</th><th>Word</th><th>IPA</th><th>Forms</th><th>English</th><th></th></tr>
<tr><td>el</td><td><audio src='x.mp3'/>gato</td><td>ˈɡato</td><td></td><td>cat</td><td></td></tr>
<tr><td>la</td><td><audio src="https://example.com/media/casa.mp3"></audio><a>casa</a></td><td>ˈkasa</td><td>&nbsp;</td><td>house</td><td></td></tr>
</tbody>`

func TestParseFragment(t *testing.T) {
	got, err := Parse(Clean(fragment))
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)

	assert.False(t, got.Rows[0].HasData(), "header cells are not data cells")

	row := got.Rows[1].Cells
	require.Len(t, row, 6)
	assert.Equal(t, table.RawCell{Text: "el"}, row[0])
	assert.Equal(t, table.RawCell{Text: "gato", AudioSources: []string{"x.mp3"}}, row[1])
	assert.Equal(t, "ˈɡato", row[2].Text)
	assert.Equal(t, "", row[3].Text)
	assert.Equal(t, "cat", row[4].Text)

	row = got.Rows[2].Cells
	require.Len(t, row, 6)
	assert.Equal(t, table.RawCell{Text: "casa", AudioSources: []string{"https://example.com/media/casa.mp3"}}, row[1])
	assert.Equal(t, "", row[3].Text, "no-break space must be removed")
}

func TestParseDocument(t *testing.T) {
	doc := `<!DOCTYPE html>
<html><head><title>Unit 1</title></head><body>
<p>Vocabulary</p>
<table>
  <thead><tr><th>A</th><th>B</th></tr></thead>
  <tbody>
    <tr><td></td><td><audio><source src="perro.ogg"></audio>perro</td><td>ˈpero</td><td>-s</td><td>dog</td><td>
      <table><tr><td>nested</td></tr></table>
    </td></tr>
  </tbody>
</table>
<table><tr><td>second table</td></tr></table>
</body></html>`

	got, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)

	row := got.Rows[1].Cells
	require.Len(t, row, 6)
	assert.Equal(t, "", row[0].Text)
	assert.Equal(t, []string{"perro.ogg"}, row[1].AudioSources)
	assert.Equal(t, "perro", row[1].Text)
	assert.Equal(t, "-s", row[3].Text)
}

func TestParseAudioWithoutSource(t *testing.T) {
	got, err := Parse(`<table><tr><td><audio></audio>gato</td><td><audio src="a.mp3"></audio><audio src="b.mp3"></audio>x</td></tr></table>`)
	require.NoError(t, err)

	cells := got.Rows[0].Cells
	assert.Equal(t, []string{""}, cells[0].AudioSources)
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, cells[1].AudioSources)
}

func TestParseSpacerRow(t *testing.T) {
	got, err := Parse(`<table><tr><th>h</th></tr><tr></tr></table>`)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.False(t, got.Rows[1].HasData())
}

func TestParseNoRows(t *testing.T) {
	_, err := Parse(`<p>nothing here</p>`)
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"entity", "<td>&nbsp;</td>", "<td></td>"},
		{"decimal entity", "a&#160;b", "ab"},
		{"hex entity", "a&#xa0;b&#xA0;c", "abc"},
		{"literal", "a\u00a0b", "ab"},
		{"ordinary spaces kept", "el gato", "el gato"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit1.html")
	require.NoError(t, os.WriteFile(path, []byte(fragment), 0644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)
	assert.Equal(t, "", got.Rows[2].Cells[3].Text)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.html"))
	var ingestErr *IngestionError
	require.True(t, errors.As(err, &ingestErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	empty := filepath.Join(dir, "empty.html")
	require.NoError(t, os.WriteFile(empty, []byte("<p>no table</p>"), 0644))
	_, err = ReadFile(empty)
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, empty, ingestErr.Path)
	assert.True(t, errors.Is(err, ErrNoRows))
}
