package utils

import (
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"
)

// MaxAbsDiff returns max |a[i] - b[i]| over the strided entries
// i = v, v+stride, ... of two arrays of equal length. A stride of 1 and
// v = 0 covers the whole array. NaN in either array propagates.
func MaxAbsDiff(a, b []float64, stride, v int) float64 {
	if len(a) != len(b) {
		panic(fmt.Errorf("length mismatch %d != %d", len(a), len(b)))
	}
	n := strideCount(len(a), stride, v)
	if n == 0 {
		return 0
	}
	return parallel.RangeReduceFloat64(0, n, 0, func(low, high int) (result float64) {
		for k := low; k < high; k++ {
			i := k*stride + v
			result = math.Max(result, math.Abs(a[i]-b[i]))
		}
		return
	}, math.Max)
}

// MaxAbs returns max |a[i]| over the strided entries of a.
func MaxAbs(a []float64, stride, v int) float64 {
	n := strideCount(len(a), stride, v)
	if n == 0 {
		return 0
	}
	return parallel.RangeReduceFloat64(0, n, 0, func(low, high int) (result float64) {
		for k := low; k < high; k++ {
			result = math.Max(result, math.Abs(a[k*stride+v]))
		}
		return
	}, math.Max)
}

// NormL2 returns the discrete 2-norm of the strided entries of a.
func NormL2(a []float64, stride, v int) float64 {
	n := strideCount(len(a), stride, v)
	if n == 0 {
		return 0
	}
	sum := parallel.RangeReduceFloat64(0, n, 0, func(low, high int) (result float64) {
		for k := low; k < high; k++ {
			f := a[k*stride+v]
			result += f * f
		}
		return
	}, func(x, y float64) float64 { return x + y })
	return math.Sqrt(sum)
}

// RelativeDiff is MaxAbsDiff scaled by the largest magnitude of b, with an
// absolute floor of one for arrays that are nearly zero.
func RelativeDiff(a, b []float64) float64 {
	return MaxAbsDiff(a, b, 1, 0) / math.Max(1, MaxAbs(b, 1, 0))
}

func strideCount(n, stride, v int) int {
	if stride < 1 || v < 0 || v >= stride {
		panic(fmt.Errorf("invalid stride %d / offset %d", stride, v))
	}
	if n <= v {
		return 0
	}
	return (n-v-1)/stride + 1
}
