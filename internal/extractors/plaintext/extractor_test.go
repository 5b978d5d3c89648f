package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

func TestContentTypes(t *testing.T) {
	e := New()
	types := e.ContentTypes()

	require.NotEmpty(t, types)
	assert.Contains(t, types, "text/plain")
	assert.Contains(t, types, "text/markdown")
}

func TestSupports(t *testing.T) {
	e := New()

	assert.True(t, e.Supports("text/plain"))
	assert.True(t, e.Supports("text/markdown"))
	assert.False(t, e.Supports("application/pdf"))
	assert.False(t, e.Supports(""))
}

func TestExtract_UTF8(t *testing.T) {
	e := New()

	text, err := e.Extract(context.Background(), []byte("社内規定 第1条\n勤務時間は9時から18時とする。"))
	require.NoError(t, err)
	assert.Equal(t, "社内規定 第1条\n勤務時間は9時から18時とする。", text)
}

func TestExtract_ShiftJIS(t *testing.T) {
	e := New()

	// "こんにちは" encoded as Shift-JIS.
	raw := []byte{0x82, 0xB1, 0x82, 0xF1, 0x82, 0xC9, 0x82, 0xBF, 0x82, 0xCD}
	text, err := e.Extract(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", text)
}

func TestExtract_Empty(t *testing.T) {
	e := New()

	text, err := e.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtract_Undecodable(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), []byte{0xFF, 0xFE, 0xFF})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
