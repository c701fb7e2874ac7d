package bitmap

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var (
	ErrInvalidSize     = errors.New("bitmap: size must be at least 1")
	ErrIndexOutOfRange = errors.New("bitmap: index out of range")
)

// Bitmap is a fixed-size sequence of bits packed into bytes.
// Bit i lives in byte i/8 at bit position i%8, least significant bit first.
type Bitmap struct {
	data []byte
	size int
}

func New(size int) (*Bitmap, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	return &Bitmap{
		data: make([]byte, (size+7)/8),
		size: size,
	}, nil
}

// FromBytes builds a bitmap of size bits backed by a copy of data.
// Padding bits past size in the last byte are cleared.
func FromBytes(size int, data []byte) (*Bitmap, error) {
	b, err := New(size)
	if err != nil {
		return nil, err
	}
	if len(data) != len(b.data) {
		return nil, fmt.Errorf("bitmap: %d bits need %d bytes, got %d", size, len(b.data), len(data))
	}

	copy(b.data, data)
	if rem := size % 8; rem != 0 {
		b.data[len(b.data)-1] &= byte(1<<rem) - 1
	}
	return b, nil
}

// Parse reads a string of '0' and '1' characters, index 0 first.
func Parse(s string) (*Bitmap, error) {
	b, err := New(len(s))
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			b.data[i/8] |= 1 << (i % 8)
		default:
			return nil, fmt.Errorf("bitmap: invalid character %q at %d", s[i], i)
		}
	}
	return b, nil
}

func (b *Bitmap) Get(pos int) (bool, error) {
	if pos < 0 || pos >= b.size {
		return false, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, pos, b.size)
	}

	idx := pos / 8
	shift := pos % 8
	return (b.data[idx] & (1 << shift)) != 0, nil
}

func (b *Bitmap) Set(pos int, value bool) error {
	if pos < 0 || pos >= b.size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, pos, b.size)
	}

	idx := pos / 8
	shift := pos % 8
	if value {
		b.data[idx] |= 1 << shift
	} else {
		b.data[idx] &^= 1 << shift
	}
	return nil
}

// Len returns the number of bits.
func (b *Bitmap) Len() int {
	return b.size
}

// Bytes exposes the backing bytes. Callers must not modify them.
func (b *Bitmap) Bytes() []byte {
	return b.data
}

func (b *Bitmap) ByteCount() int {
	return len(b.data)
}

// FullByteCount returns the number of bytes whose 8 bits all belong to the
// sequence. A partially used last byte is excluded.
func (b *Bitmap) FullByteCount() int {
	return b.size / 8
}

func (b *Bitmap) OnesCount() int {
	n := 0
	for _, v := range b.data {
		n += bits.OnesCount8(v)
	}
	return n
}

func (b *Bitmap) Clone() *Bitmap {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &Bitmap{data: data, size: b.size}
}

// Equal reports whether both bitmaps have the same size and bits.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b.size != other.size {
		return false
	}
	for i := range b.data {
		if b.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

func (b *Bitmap) String() string {
	var sb strings.Builder
	sb.Grow(b.size)
	for i := 0; i < b.size; i++ {
		if b.data[i/8]&(1<<(i%8)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
