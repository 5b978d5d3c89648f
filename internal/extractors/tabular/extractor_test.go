package tabular

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypes(t *testing.T) {
	e := New()

	assert.Equal(t, []string{"text/csv"}, e.ContentTypes())
	assert.True(t, e.Supports("text/csv"))
	assert.False(t, e.Supports("text/plain"))
}

func TestExtract_SimpleRows(t *testing.T) {
	e := New()
	raw := []byte("id,question,answer\n1,休暇は何日,20日\n2,勤務時間は,9時から18時\n")

	text, err := e.Extract(context.Background(), raw)
	require.NoError(t, err)

	expected := "id, question, answer\n1, 休暇は何日, 20日\n2, 勤務時間は, 9時から18時"
	assert.Equal(t, expected, text)
}

func TestExtract_QuotedFields(t *testing.T) {
	e := New()
	raw := []byte("name,note\nタロウ,\"改行を,含む備考\"\n")

	text, err := e.Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "name, note\nタロウ, 改行を,含む備考", text)
}

func TestExtract_RaggedRows(t *testing.T) {
	e := New()
	raw := []byte("a,b,c\nd,e\nf\n")

	text, err := e.Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "a, b, c\nd, e\nf", text)
}

func TestExtract_ShiftJIS(t *testing.T) {
	e := New()

	// "見出し\nこんにちは" as a Shift-JIS CSV: two rows of one cell.
	raw := []byte{
		0x8C, 0xA9, 0x8F, 0x6F, 0x82, 0xB5, 0x0A,
		0x82, 0xB1, 0x82, 0xF1, 0x82, 0xC9, 0x82, 0xBF, 0x82, 0xCD, 0x0A,
	}

	text, err := e.Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "見出し\nこんにちは", text)
}

func TestExtract_Empty(t *testing.T) {
	e := New()

	text, err := e.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}
