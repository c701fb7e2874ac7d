package densify

import "github.com/umegbewe/densify/internal/runtable"

// Chunked sets one bit of seq, consuming whole bytes through the run table,
// and returns the index it chose.
func Chunked(seq *Sequence) int {
	data := seq.Bytes()
	full := seq.FullByteCount()

	var st runState
	for k := 0; k < full; k++ {
		e := runtable.Lookup(data[k])
		if e.IsEmpty() {
			st.current += 8
			continue
		}

		// run that started before this byte and ends at its first one-bit
		edge := st.current + int(e.Prefix)
		if edge > st.bestLen {
			st.bestLen = edge
			st.bestPos = k*8 + int(e.Prefix) - edge
			st.inByte = false
		}
		if inner := int(e.Internal); inner > st.bestLen && inner > edge {
			st.bestLen = inner
			st.bestPos = k * 8
			st.inByte = true
		}
		st.current = int(e.Suffix)
	}

	st.scan(data, full*8, seq.Len())
	return flip(seq, st.place(data, seq.Len()))
}
