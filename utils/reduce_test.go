package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReductions(t *testing.T) {
	var (
		n    = 10007
		a, b = make([]float64, 3*n), make([]float64, 3*n)
	)
	for i := range a {
		a[i] = math.Sin(float64(i))
		b[i] = a[i]
	}
	b[3*500+1] += 0.25
	b[3*7001+2] -= 0.5
	assert.InDelta(t, 0.5, MaxAbsDiff(a, b, 1, 0), 1.e-15)
	assert.Equal(t, 0., MaxAbsDiff(a, b, 3, 0))
	assert.InDelta(t, 0.25, MaxAbsDiff(a, b, 3, 1), 1.e-15)
	assert.InDelta(t, 0.5, MaxAbsDiff(a, b, 3, 2), 1.e-15)
	assert.Equal(t, 0., MaxAbsDiff(nil, nil, 1, 0))

	c := []float64{3, -4, 0, 1}
	assert.Equal(t, 4., MaxAbs(c, 1, 0))
	assert.Equal(t, 3., MaxAbs(c, 2, 0))
	assert.InDelta(t, math.Sqrt(26), NormL2(c, 1, 0), 1.e-14)
	assert.InDelta(t, math.Sqrt(17), NormL2(c, 2, 1), 1.e-14)

	b[3] = math.NaN()
	assert.True(t, math.IsNaN(MaxAbsDiff(a, b, 1, 0)))
	assert.Equal(t, 3, FirstNonFinite(b))
	assert.Panics(t, func() { MaxAbsDiff(a, b[1:], 1, 0) })
}
