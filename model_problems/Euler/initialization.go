package Euler

import (
	"fmt"
	"math"
	"strings"
)

type InitType uint

const (
	CONSTANT InitType = iota
	WEAKBLAST
	DENSITYWAVE
)

var (
	InitNames = map[string]InitType{
		"constant":        CONSTANT,
		"freestream":      CONSTANT,
		"weak_blast_wave": WEAKBLAST,
		"weakblast":       WEAKBLAST,
		"density_wave":    DENSITYWAVE,
		"densitywave":     DENSITYWAVE,
	}
	InitPrintNames = []string{"Constant", "Weak Blast Wave", "Density Wave"}
)

func (it InitType) String() string { return InitPrintNames[it] }

func NewInitType(label string) (it InitType, err error) {
	var ok bool
	if len(label) == 0 {
		return it, fmt.Errorf("empty init type, must be one of %v", InitPrintNames)
	}
	if it, ok = InitNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
	}
	return
}

// InitialCondition returns the state of an initialization as a function of
// position and time.
func (eq *Euler) InitialCondition(it InitType) func(x []float64, t float64, u []float64) {
	switch it {
	case WEAKBLAST:
		return eq.WeakBlastWave
	case DENSITYWAVE:
		return eq.DensityWave
	default:
		return eq.Constant
	}
}

// Constant is a uniform flow with momentum (0.1, -0.2, 0.7).
func (eq *Euler) Constant(x []float64, t float64, u []float64) {
	m := [3]float64{0.1, -0.2, 0.7}
	u[0] = 1
	copy(u[1:1+eq.Dims], m[:eq.Dims])
	u[eq.Dims+1] = 10
}

// WeakBlastWave is a radially expanding pressure and density jump at the
// origin.
func (eq *Euler) WeakBlastWave(x []float64, t float64, u []float64) {
	var (
		r2 float64
		v  [3]float64
	)
	for d := 0; d < eq.Dims; d++ {
		r2 += x[d] * x[d]
	}
	r := math.Sqrt(r2)
	if r > 0.5 {
		eq.Conservatives(1, v, 1, u)
		return
	}
	switch eq.Dims {
	case 1:
		v[0] = -0.1882
		if x[0] > 0 {
			v[0] = 0.1882
		}
	case 2:
		phi := math.Atan2(x[1], x[0])
		v[0], v[1] = 0.1882*math.Cos(phi), 0.1882*math.Sin(phi)
	case 3:
		var (
			phi   = math.Atan2(x[1], x[0])
			theta float64
		)
		if r > 0 {
			theta = math.Acos(x[2] / r)
		}
		v[0] = 0.1882 * math.Cos(phi) * math.Sin(theta)
		v[1] = 0.1882 * math.Sin(phi) * math.Sin(theta)
		v[2] = 0.1882 * math.Cos(theta)
	}
	eq.Conservatives(1.1691, v, 1.245, u)
}

// DensityWave advects a sinusoidal density at constant velocity and
// pressure, exact at every t on a periodic unit domain.
func (eq *Euler) DensityWave(x []float64, t float64, u []float64) {
	var (
		v     = [3]float64{0.1, 0.2, 0.7}
		phase float64
	)
	for d := 0; d < eq.Dims; d++ {
		phase += x[d] - t*v[d]
	}
	eq.Conservatives(1+0.98*math.Sin(2*math.Pi*phase), v, 20, u)
}
