// Package runtable holds the zero-run profile of every byte value.
//
// Bits are read from the least significant bit upwards, matching the layout
// of internal/bitmap. The table lets a scanner consume a whole byte with one
// lookup instead of eight bit tests.
package runtable

// Empty is the Prefix, Internal and Suffix value of the zero byte.
const Empty = 8

// Entry is the zero-run profile of a single byte.
type Entry struct {
	Prefix   uint8 // zeros before the first one-bit
	Internal uint8 // longest zero run between two one-bits
	Suffix   uint8 // zeros after the last one-bit
}

// IsEmpty reports whether the byte had no one-bit.
func (e Entry) IsEmpty() bool {
	return e.Prefix == Empty
}

var table = build()

func build() [256]Entry {
	var t [256]Entry
	for v := range t {
		t[v] = Analyze(byte(v))
	}
	return t
}

// Lookup returns the precomputed entry for b.
func Lookup(b byte) Entry {
	return table[b]
}

// Table returns a copy of the whole table.
func Table() [256]Entry {
	return table
}

// Analyze computes the entry for b.
func Analyze(b byte) Entry {
	if b == 0 {
		return Entry{Prefix: Empty, Internal: Empty, Suffix: Empty}
	}

	var first, last, longest, zeros uint8
	seen := false
	for i := uint8(0); i < 8; i++ {
		if b&(1<<i) != 0 {
			if !seen {
				first = i
				seen = true
			}
			longest = max(longest, zeros)
			zeros = 0
			last = i
		} else if seen {
			zeros++
		}
	}

	return Entry{Prefix: first, Internal: longest, Suffix: 7 - last}
}
