package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 50, NormalizeLimit(50))
	assert.Equal(t, MaxLimit, NormalizeLimit(500))
}

func TestNormalizeOffset(t *testing.T) {
	assert.Equal(t, 0, NormalizeOffset(-1))
	assert.Equal(t, 75, NormalizeOffset(75))
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := EncodeCursor(1234)
	id, err := ParseCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), id)
}

func TestParseCursorEmpty(t *testing.T) {
	id, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestParseCursorInvalid(t *testing.T) {
	_, err := ParseCursor("not-base64!!")
	assert.Error(t, err)

	_, err = ParseCursor(EncodeCursor(-3))
	assert.Error(t, err)
}
