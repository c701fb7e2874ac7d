package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmpty(t *testing.T) {
	for _, size := range []int{0, -1, -64} {
		_, err := New(size)
		assert.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
	}
}

func TestLayout(t *testing.T) {
	b, err := New(20)
	require.NoError(t, err)

	assert.Equal(t, 20, b.Len())
	assert.Equal(t, 3, b.ByteCount())
	assert.Equal(t, 2, b.FullByteCount())

	require.NoError(t, b.Set(0, true))
	require.NoError(t, b.Set(9, true))
	require.NoError(t, b.Set(19, true))
	assert.Equal(t, []byte{0x01, 0x02, 0x08}, b.Bytes())

	on, err := b.Get(9)
	require.NoError(t, err)
	assert.True(t, on)
	off, err := b.Get(10)
	require.NoError(t, err)
	assert.False(t, off)

	require.NoError(t, b.Set(9, false))
	assert.Equal(t, []byte{0x01, 0x00, 0x08}, b.Bytes())
	assert.Equal(t, 2, b.OnesCount())
}

func TestFullByteCountAligned(t *testing.T) {
	b, err := New(16)
	require.NoError(t, err)
	assert.Equal(t, 2, b.FullByteCount())

	b, err = New(7)
	require.NoError(t, err)
	assert.Equal(t, 0, b.FullByteCount())
	assert.Equal(t, 1, b.ByteCount())
}

func TestOutOfRange(t *testing.T) {
	b, err := New(10)
	require.NoError(t, err)

	for _, pos := range []int{-1, 10, 11, 100} {
		_, err := b.Get(pos)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "get %d", pos)
		assert.ErrorIs(t, b.Set(pos, true), ErrIndexOutOfRange, "set %d", pos)
	}
	// padding bits stay untouched
	assert.Equal(t, []byte{0, 0}, b.Bytes())
}

func TestParseAndString(t *testing.T) {
	const s = "1000000001100"
	b, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, len(s), b.Len())
	assert.Equal(t, []byte{0x01, 0x06}, b.Bytes())
	assert.Equal(t, s, b.String())

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Parse("01x")
	assert.Error(t, err)
}

func TestFromBytesMasksPadding(t *testing.T) {
	b, err := FromBytes(10, []byte{0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x03}, b.Bytes())
	assert.Equal(t, "1111111111", b.String())

	_, err = FromBytes(10, []byte{0xff})
	assert.Error(t, err)
}

func TestFromBytesCopies(t *testing.T) {
	src := []byte{0x0f}
	b, err := FromBytes(8, src)
	require.NoError(t, err)
	src[0] = 0
	assert.Equal(t, []byte{0x0f}, b.Bytes())
}

func TestCloneAndEqual(t *testing.T) {
	b, err := Parse("0101")
	require.NoError(t, err)

	c := b.Clone()
	assert.True(t, b.Equal(c))

	require.NoError(t, c.Set(0, true))
	assert.False(t, b.Equal(c))
	assert.Equal(t, "0101", b.String())

	other, err := Parse("01010")
	require.NoError(t, err)
	assert.False(t, b.Equal(other))
}
