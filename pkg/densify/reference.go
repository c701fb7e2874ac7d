package densify

// runState tracks the scan. best* describe the longest terminated run seen so
// far. inByte marks a best run taken from a byte's internal run, whose exact
// offset inside that byte is not known yet; bestPos is then the byte start.
type runState struct {
	current int
	bestLen int
	bestPos int
	inByte  bool
}

// scan advances st over bits [from, to) of data one bit at a time.
func (st *runState) scan(data []byte, from, to int) {
	for i := from; i < to; i++ {
		if data[i>>3]&(1<<(i&7)) != 0 {
			if st.bestLen < st.current {
				st.bestLen = st.current
				st.bestPos = i - st.current
				st.inByte = false
			}
			st.current = 0
		} else {
			st.current++
		}
	}
}

// place picks the bit to set for a sequence of n bits once the whole
// sequence has been scanned.
func (st *runState) place(data []byte, n int) int {
	switch {
	case st.bestLen < st.current:
		return n - 1
	case st.inByte:
		return withinByte(data[st.bestPos>>3], st.bestPos)
	case st.bestPos == 0:
		return 0
	default:
		return st.bestPos + st.bestLen/2
	}
}

// withinByte returns the midpoint of the longest terminated zero run of b,
// offset by base. The run trailing the last one-bit is not a candidate.
func withinByte(b byte, base int) int {
	var st runState
	st.scan([]byte{b}, 0, 8)
	return base + st.bestPos + st.bestLen/2
}

// Reference sets one bit of seq by testing every bit in order and returns
// the index it chose. The other finders must agree with it on every input.
func Reference(seq *Sequence) int {
	var st runState
	st.scan(seq.Bytes(), 0, seq.Len())
	return flip(seq, st.place(seq.Bytes(), seq.Len()))
}
