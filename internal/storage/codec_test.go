package storage

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{
		"":     CompressionNone,
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	} {
		got, err := ParseCompression(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseCompression("gzip")
	assert.ErrorIs(t, err, ErrBadCompression)
}

func TestCodecRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		snap := sampleSnapshot("seq/with:odd name", 8*1024+3)
		data, err := encodeSnapshot(snap, c)
		require.NoError(t, err)
		assert.Equal(t, byte(c), data[1])

		got, err := decodeSnapshot(data)
		require.NoError(t, err, c.String())
		assertSnapshotEqual(t, snap, got)
	}
}

func TestCodecCompressesSparseBits(t *testing.T) {
	snap := &Snapshot{Name: "sparse", Size: 1 << 16, Bits: make([]byte, 1<<13)}
	snap.Bits[100] = 0x10

	raw, err := encodeSnapshot(snap, CompressionNone)
	require.NoError(t, err)
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		packed, err := encodeSnapshot(snap, c)
		require.NoError(t, err)
		assert.Less(t, len(packed), len(raw)/4, c.String())
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	snap := sampleSnapshot("x", 20)
	data, err := encodeSnapshot(snap, CompressionNone)
	require.NoError(t, err)

	_, err = decodeSnapshot(nil)
	assert.ErrorIs(t, err, ErrCorrupt)

	bad := bytes.Clone(data)
	bad[0] = 99
	_, err = decodeSnapshot(bad)
	assert.ErrorIs(t, err, ErrBadVersion)

	bad = bytes.Clone(data)
	bad[1] = 42
	_, err = decodeSnapshot(bad)
	assert.ErrorIs(t, err, ErrBadCompression)

	// payload one byte short
	_, err = decodeSnapshot(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = encodeSnapshot(&Snapshot{Name: "empty"}, CompressionNone)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeRejectsOversizedLength(t *testing.T) {
	data := []byte{codecVersion, byte(CompressionNone)}
	data = binary.AppendUvarint(data, math.MaxUint64)
	data = binary.AppendUvarint(data, 0)
	data = binary.AppendVarint(data, 0)
	data = binary.AppendUvarint(data, 1)
	data = append(data, 'x')

	snap, err := decodeSnapshot(data)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Nil(t, snap)

	data = []byte{codecVersion, byte(CompressionNone)}
	data = binary.AppendUvarint(data, 0)
	_, err = decodeSnapshot(data)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestZstdCodersAreReused(t *testing.T) {
	bits := bytes.Repeat([]byte{0x0f, 0x00}, 512)
	for i := 0; i < 4; i++ {
		packed, err := compressBits(bits, CompressionZSTD)
		require.NoError(t, err)
		got, err := decompressBits(packed, CompressionZSTD)
		require.NoError(t, err)
		assert.Equal(t, bits, got)
	}

	enc, err := getZstdEncoder()
	require.NoError(t, err)
	require.NotNil(t, enc)
	zstdEncoderPool.Put(enc)

	dec, err := getZstdDecoder()
	require.NoError(t, err)
	require.NotNil(t, dec)
	zstdDecoderPool.Put(dec)
}
