package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how snapshot bits are packed at rest.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZSTD Compression = 2
)

const codecVersion byte = 1

var (
	ErrBadVersion     = errors.New("storage: unsupported snapshot version")
	ErrBadCompression = errors.New("storage: unknown compression")
	ErrCorrupt        = errors.New("storage: corrupt snapshot")
)

// ParseCompression maps a configuration name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadCompression, name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return enc, nil
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return dec, nil
}

func compressBits(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadCompression, c)
	}
}

func decompressBits(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		return dec.DecodeAll(data, nil)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadCompression, c)
	}
}

// encodeSnapshot serializes snap as
// [version][compression][uvarint size][uvarint inserts][varint unix nanos]
// [uvarint name length][name][payload].
func encodeSnapshot(snap *Snapshot, c Compression) ([]byte, error) {
	if want := (snap.Size + 7) / 8; snap.Size <= 0 || len(snap.Bits) != want {
		return nil, fmt.Errorf("%w: %d bits with %d bytes", ErrCorrupt, snap.Size, len(snap.Bits))
	}

	payload, err := compressBits(snap.Bits, c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 2+4*binary.MaxVarintLen64+len(snap.Name)+len(payload))
	out = append(out, codecVersion, byte(c))
	out = binary.AppendUvarint(out, uint64(snap.Size))
	out = binary.AppendUvarint(out, snap.Inserts)
	out = binary.AppendVarint(out, snap.UpdatedAt.UnixNano())
	out = binary.AppendUvarint(out, uint64(len(snap.Name)))
	out = append(out, snap.Name...)
	return append(out, payload...), nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	if data[0] != codecVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, data[0])
	}
	c := Compression(data[1])
	r := bytes.NewReader(data[2:])

	size, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: size: %v", ErrCorrupt, err)
	}
	if size == 0 || size > math.MaxInt {
		return nil, fmt.Errorf("%w: size %d", ErrCorrupt, size)
	}
	inserts, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: inserts: %v", ErrCorrupt, err)
	}
	nanos, err := binary.ReadVarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrCorrupt, err)
	}
	nameLen, err := binary.ReadUvarint(r)
	if err != nil || nameLen > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: name length", ErrCorrupt)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("%w: name: %v", ErrCorrupt, err)
	}

	rest := data[len(data)-r.Len():]
	bits, err := decompressBits(rest, c)
	if err != nil {
		return nil, err
	}
	if uint64(len(bits)) != (size+7)/8 {
		return nil, fmt.Errorf("%w: %d bits with %d bytes", ErrCorrupt, size, len(bits))
	}

	return &Snapshot{
		Name:      string(name),
		Size:      int(size),
		Bits:      bits,
		Inserts:   inserts,
		UpdatedAt: time.Unix(0, nanos),
	}, nil
}
