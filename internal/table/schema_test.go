package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSchema(t *testing.T) {
	s, err := LookupSchema("v1")
	require.NoError(t, err)
	assert.True(t, s.Positions[PosTranscription].Required)

	s, err = LookupSchema("v2")
	require.NoError(t, err)
	assert.False(t, s.Positions[PosTranscription].Required)

	_, err = LookupSchema("v9")
	assert.Error(t, err)
}

func TestSchemaVersions(t *testing.T) {
	assert.Equal(t, []string{"v1", "v2"}, SchemaVersions())
}

func TestBuiltinSchemasAreValid(t *testing.T) {
	for _, v := range SchemaVersions() {
		s, err := LookupSchema(v)
		require.NoError(t, err)
		assert.NoError(t, s.Validate(), v)
	}
}

func TestSchemaValidate(t *testing.T) {
	short := Schema{Version: "short", Positions: SchemaV1.Positions[:5]}
	assert.Error(t, short.Validate())

	positions := append([]Position(nil), SchemaV1.Positions...)
	positions[PosHeadword] = Position{Field: "headword", Kind: KindText, Required: true}
	assert.Error(t, Schema{Version: "text-headword", Positions: positions}.Validate())

	positions = append([]Position(nil), SchemaV1.Positions...)
	positions[PosPrefix] = Position{Field: "prefix", Kind: KindAudio}
	assert.Error(t, Schema{Version: "audio-prefix", Positions: positions}.Validate())

	_, err := NewDecoder(short)
	assert.Error(t, err)
}

func TestSchemaTrimSpace(t *testing.T) {
	trimmed := SchemaV1
	trimmed.TrimSpace = true
	d, err := NewDecoder(trimmed)
	require.NoError(t, err)

	row, err := d.DecodeRow(1, []RawCell{
		text(" el "), audio("x.mp3", "\ngato\n"), text(" ˈɡato"), text("  "), text("cat "), {},
	})
	require.NoError(t, err)
	assert.Equal(t, "el", row[PosPrefix].Text)
	assert.Equal(t, "gato", row[PosHeadword].Text)
	assert.Equal(t, "", row[PosInflection].Text)
	assert.Equal(t, "cat", row[PosTranslation].Text)
}
