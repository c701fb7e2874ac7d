package densify

import "github.com/umegbewe/densify/internal/metrics"

// b2u converts b to 0 or 1; the compiler lowers it to a flag set.
func b2u(b bool) uint64 {
	var v uint64
	if b {
		v = 1
	}
	return v
}

func updateGauges(name string, seq *Sequence) {
	metrics.SequenceOnes.WithLabelValues(name).Set(float64(seq.OnesCount()))
	metrics.SequenceSize.WithLabelValues(name).Set(float64(seq.Len()))
}
