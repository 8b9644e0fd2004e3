package ShallowWater

import (
	"fmt"
	"math"
	"strings"
)

type InitType uint

const (
	LAKEATREST InitType = iota
	GAUSSIANHUMP
)

var (
	InitNames = map[string]InitType{
		"lake_at_rest":  LAKEATREST,
		"lakeatrest":    LAKEATREST,
		"gaussian_hump": GAUSSIANHUMP,
		"gaussian":      GAUSSIANHUMP,
	}
	InitPrintNames = []string{"Lake At Rest", "Gaussian Hump"}
)

func (it InitType) String() string { return InitPrintNames[it] }

func NewInitType(label string) (it InitType, err error) {
	var ok bool
	if it, ok = InitNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
	}
	return
}

// Bottom is a topography b(x).
type Bottom func(x []float64) float64

// SmoothBump is a cosine shaped seamount of height 0.2 around the origin.
func SmoothBump(x []float64) float64 {
	var r2 float64
	for _, xd := range x {
		r2 += xd * xd
	}
	if r2 >= 0.25 {
		return 0
	}
	return 0.1 * (1 + math.Cos(2*math.Pi*math.Sqrt(r2)))
}

// LakeAtRest is still water with surface level H over Bottom.
type LakeAtRest struct {
	Dims   int
	H      float64
	Bottom Bottom
}

func (lr LakeAtRest) State(x []float64, t float64, u []float64) {
	b := lr.Bottom(x[:lr.Dims])
	u[0] = lr.H - b
	for d := 0; d < lr.Dims; d++ {
		u[1+d] = 0
	}
	u[lr.Dims+1] = b
}

// GaussianHump raises the surface of LakeAtRest by Amplitude*exp(-|x|²/0.04).
type GaussianHump struct {
	LakeAtRest
	Amplitude float64
}

func (gh GaussianHump) State(x []float64, t float64, u []float64) {
	gh.LakeAtRest.State(x, t, u)
	var r2 float64
	for d := 0; d < gh.Dims; d++ {
		r2 += x[d] * x[d]
	}
	u[0] += gh.Amplitude * math.Exp(-r2/0.04)
}

// InitialCondition returns the state of an initialization over a still
// surface at height 1.
func (eq *ShallowWater) InitialCondition(it InitType, bottom Bottom) func(x []float64, t float64, u []float64) {
	lr := LakeAtRest{Dims: eq.Dims, H: 1, Bottom: bottom}
	switch it {
	case GAUSSIANHUMP:
		return GaussianHump{LakeAtRest: lr, Amplitude: 0.1}.State
	default:
		return lr.State
	}
}
