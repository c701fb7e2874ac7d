// Package densify places one-bits into packed bit sequences.
//
// Each insertion finds the longest run of zero bits and sets one bit inside
// it. Terminated runs are compared with a strict greater-than, so among runs
// of equal length the earliest wins. The bit that is set is chosen as follows:
//
//   - if the run touching the end of the sequence is strictly longer than every
//     terminated run, the last bit is set;
//   - if the winning run starts at index 0, bit 0 is set;
//   - otherwise the midpoint start+length/2 of the winning run is set.
//
// An all-ones sequence is left unchanged.
//
// Three finders implement the same policy. Reference tests one bit at a time.
// Chunked consumes a byte per lookup in a precomputed run table and falls back
// to a bit scan of a single byte when the winning run is internal to it.
// BranchFree is Chunked with the per-byte state update selected by index
// instead of by branches.
package densify

import (
	"errors"
	"fmt"
	"sort"

	"github.com/umegbewe/densify/internal/bitmap"
)

// Sequence is a fixed-size packed bit sequence.
type Sequence = bitmap.Bitmap

var (
	ErrInvalidSize     = bitmap.ErrInvalidSize
	ErrIndexOutOfRange = bitmap.ErrIndexOutOfRange
	ErrUnknownStrategy = errors.New("densify: unknown strategy")
)

// NewSequence returns a zeroed sequence of size bits.
func NewSequence(size int) (*Sequence, error) {
	return bitmap.New(size)
}

// ParseSequence reads a sequence from a string of '0' and '1', index 0 first.
func ParseSequence(s string) (*Sequence, error) {
	return bitmap.Parse(s)
}

// Finder sets one bit of seq and returns its index.
type Finder func(seq *Sequence) int

const (
	StrategyReference  = "reference"
	StrategyChunked    = "chunked"
	StrategyBranchFree = "branchfree"
)

var finders = map[string]Finder{
	StrategyReference:  Reference,
	StrategyChunked:    Chunked,
	StrategyBranchFree: BranchFree,
}

// Lookup returns the finder registered under name.
func Lookup(name string) (Finder, error) {
	f, ok := finders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return f, nil
}

// Strategies lists the registered strategy names in sorted order.
func Strategies() []string {
	names := make([]string, 0, len(finders))
	for name := range finders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flip sets bit pos, which every finder derives from within [0, Len()).
func flip(seq *Sequence, pos int) int {
	if err := seq.Set(pos, true); err != nil {
		panic(err)
	}
	return pos
}
