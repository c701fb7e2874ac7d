package runtable

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

// longestInternal finds the longest zero run bounded by one-bits on both sides.
func longestInternal(b byte) uint8 {
	var best uint8
	for start := 0; start < 8; start++ {
		for end := start; end < 8; end++ {
			if start == 0 || b&(1<<(start-1)) == 0 {
				continue
			}
			if end == 7 || b&(1<<(end+1)) == 0 {
				continue
			}
			if b>>start&(1<<(end-start+1)-1) == 0 {
				best = max(best, uint8(end-start+1))
			}
		}
	}
	return best
}

func TestZeroByteSentinel(t *testing.T) {
	e := Lookup(0)
	assert.Equal(t, Entry{Prefix: 8, Internal: 8, Suffix: 8}, e)
	assert.True(t, e.IsEmpty())
}

func TestKnownEntries(t *testing.T) {
	tests := []struct {
		b    byte
		want Entry
	}{
		{0b0000_0001, Entry{0, 0, 7}},
		{0b1000_0000, Entry{7, 0, 0}},
		{0b1000_0001, Entry{0, 6, 0}},
		{0b1111_1111, Entry{0, 0, 0}},
		{0b0001_0100, Entry{2, 1, 3}},
		{0b1001_0001, Entry{0, 3, 0}},
		{0b0010_0101, Entry{0, 2, 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Lookup(tt.b), "byte %08b", tt.b)
	}
}

func TestTableMatchesBitOps(t *testing.T) {
	tbl := Table()
	for v := 1; v < 256; v++ {
		b := byte(v)
		e := tbl[v]
		assert.False(t, e.IsEmpty())
		assert.Equal(t, uint8(bits.TrailingZeros8(b)), e.Prefix, "prefix of %08b", b)
		assert.Equal(t, uint8(bits.LeadingZeros8(b)), e.Suffix, "suffix of %08b", b)
		assert.Equal(t, longestInternal(b), e.Internal, "internal of %08b", b)
		assert.Equal(t, Analyze(b), e)

		if bits.OnesCount8(b) == 1 {
			assert.Zero(t, e.Internal)
		}
	}
}
