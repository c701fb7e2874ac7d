package densify

import "github.com/umegbewe/densify/internal/runtable"

// inByteMark is set in frame.bestPos when the best run is internal to the
// byte whose first bit is bestPos without the mark.
const inByteMark = uint64(1) << 63

// frame is the flat scan state selected per byte.
type frame struct {
	current uint64
	bestLen uint64
	bestPos uint64
}

// BranchFree sets one bit of seq like Chunked, but picks each byte's next
// state from a fixed set of outcomes by index rather than by branching.
// It returns the index it chose.
func BranchFree(seq *Sequence) int {
	data := seq.Bytes()
	full := seq.FullByteCount()

	var cur frame
	for k := 0; k < full; k++ {
		e := runtable.Lookup(data[k])
		prefix, inner, suffix := uint64(e.Prefix), uint64(e.Internal), uint64(e.Suffix)
		base := uint64(k) << 3
		edge := cur.current + prefix

		outcomes := [5]frame{
			{cur.current + 8, cur.bestLen, cur.bestPos},
			{suffix, cur.bestLen, cur.bestPos},
			{suffix, edge, base - cur.current},
			{suffix, inner, base | inByteMark},
			{suffix, inner, base | inByteMark},
		}

		hasOne := b2u(prefix != runtable.Empty)
		edgeWins := b2u(edge > cur.bestLen)
		innerWins := b2u(inner > cur.bestLen) & b2u(inner > edge)
		cur = outcomes[hasOne*(1+edgeWins+innerWins*2)]
	}

	st := runState{
		current: int(cur.current),
		bestLen: int(cur.bestLen),
		bestPos: int(cur.bestPos &^ inByteMark),
		inByte:  cur.bestPos&inByteMark != 0,
	}
	st.scan(data, full*8, seq.Len())
	return flip(seq, st.place(data, seq.Len()))
}
