package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestForget(t *testing.T) {
	SequenceOnes.WithLabelValues("forget-me").Set(3)
	SequenceSize.WithLabelValues("forget-me").Set(10)
	assert.Equal(t, 3.0, testutil.ToFloat64(SequenceOnes.WithLabelValues("forget-me")))

	Forget("forget-me")
	// a fresh child starts at zero
	assert.Zero(t, testutil.ToFloat64(SequenceOnes.WithLabelValues("forget-me")))
	assert.Zero(t, testutil.ToFloat64(SequenceSize.WithLabelValues("forget-me")))
	Forget("forget-me")
}
