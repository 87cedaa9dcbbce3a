package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocks_RoundTrip(t *testing.T) {
	blocks := []Block{
		{Kind: BlockNamedText, Name: "Verse 1", Content: "Amazing grace, how sweet the sound"},
		{Kind: BlockImage, Name: "Cover", FilePath: "/data/UserDataFiles/abc_cover.png"},
		{Kind: BlockNamedText, Name: "Chorus", Content: "Nội dung"},
		{Kind: BlockPdf, Name: "Sheet", FilePath: "/data/UserDataFiles/def_sheet.pdf"},
	}

	raw, err := EncodeBlocks(blocks)
	require.NoError(t, err)

	decoded, err := DecodeBlocks(raw)
	require.NoError(t, err)
	assert.Equal(t, blocks, decoded)
}

func TestEncodeBlocks_WireFormat(t *testing.T) {
	raw, err := EncodeBlocks([]Block{{Kind: BlockNamedText, Name: "A", Content: "b"}})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"type":"NamedText","name":"A","content":"b","filePath":""}]`, raw)
}

func TestEncodeBlocks_NilIsEmptyArray(t *testing.T) {
	raw, err := EncodeBlocks(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestEncodeBlocks_RejectsUnknownKind(t *testing.T) {
	_, err := EncodeBlocks([]Block{{Kind: "Video"}})
	assert.Error(t, err)
}

func TestDecodeBlocks_LegacyForm(t *testing.T) {
	raw := `[{"Type":0,"Name":"Verse","Content":"hello","FilePath":null},{"Type":2,"Name":"Score","Content":null,"FilePath":"/x/score.pdf"}]`

	blocks, err := DecodeBlocks(raw)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, Block{Kind: BlockNamedText, Name: "Verse", Content: "hello"}, blocks[0])
	assert.Equal(t, Block{Kind: BlockPdf, Name: "Score", FilePath: "/x/score.pdf"}, blocks[1])
}

func TestDecodeBlocks_CaseInsensitiveKind(t *testing.T) {
	blocks, err := DecodeBlocks(`[{"type":"image","name":"p","filePath":"a.png"}]`)
	require.NoError(t, err)
	assert.Equal(t, BlockImage, blocks[0].Kind)
}

func TestDecodeBlocks_Malformed(t *testing.T) {
	for _, raw := range []string{`{not json`, `{"type":"NamedText"}`, `[{"type":"Video"}]`, `[{"type":7}]`} {
		t.Run(raw, func(t *testing.T) {
			_, err := DecodeBlocks(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedValue))
		})
	}
}

func TestDecodeBlocks_BlankAndNull(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "[]"} {
		blocks, err := DecodeBlocks(raw)
		require.NoError(t, err)
		assert.Empty(t, blocks)
	}
}

func TestFirstNamedTextAndFile(t *testing.T) {
	blocks := []Block{
		{Kind: BlockImage, Name: "img", FilePath: "/a/b/photo.jpg"},
		{Kind: BlockNamedText, Name: "Verse", Content: "x"},
	}

	text, ok := FirstNamedText(blocks)
	require.True(t, ok)
	assert.Equal(t, "Verse", text.Name)

	file, ok := FirstFile(blocks)
	require.True(t, ok)
	assert.Equal(t, "photo.jpg", file.FileName())

	_, ok = FirstFile(blocks[1:])
	assert.False(t, ok)
}
