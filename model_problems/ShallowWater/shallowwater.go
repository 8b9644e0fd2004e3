package ShallowWater

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/treedg/DGSEM"
)

/*
Shallow water equations over a bottom topography b(x):

				∂h/∂t      + ∇⋅(h v)                = 0
				∂(h v)/∂t  + ∇⋅(h v v + ½ g h² I)  = -g h ∇b
				∂b/∂t                               = 0

The state is (h, h v_1..h v_Dims, b). The bottom slope term is carried by
the nonconservative flux g h_L b_R, which with the Wintermeyer volume flux
keeps the lake at rest h + b = H exactly steady.
*/

type FluxType uint

const (
	FLUX_Central FluxType = iota
	FLUX_LaxFriedrichs
	FLUX_Wintermeyer
)

var (
	FluxNames = map[string]FluxType{
		"central":        FLUX_Central,
		"lax":            FLUX_LaxFriedrichs,
		"lax_friedrichs": FLUX_LaxFriedrichs,
		"wintermeyer":    FLUX_Wintermeyer,
	}
	FluxPrintNames = []string{"Central", "Lax Friedrichs", "Wintermeyer"}
)

func (ft FluxType) String() string { return FluxPrintNames[ft] }

func NewFluxType(label string) (ft FluxType, err error) {
	var ok bool
	if ft, ok = FluxNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
	}
	return
}

type ShallowWater struct {
	Dims                            int
	Gravity                         float64
	SurfaceFluxType, VolumeFluxType FluxType
}

func NewShallowWater(ndims int, gravity float64, surface, volume FluxType) (eq *ShallowWater, err error) {
	if ndims < 1 || ndims > 2 {
		return nil, fmt.Errorf("dimension must be 1 or 2, have %d", ndims)
	}
	if gravity <= 0 {
		return nil, fmt.Errorf("gravity must be positive, have %v", gravity)
	}
	if volume == FLUX_LaxFriedrichs {
		return nil, fmt.Errorf("%s flux is not symmetric and can not be used as volume flux", volume)
	}
	return &ShallowWater{Dims: ndims, Gravity: gravity, SurfaceFluxType: surface, VolumeFluxType: volume}, nil
}

func (eq *ShallowWater) NDims() int                    { return eq.Dims }
func (eq *ShallowWater) NVariables() int               { return eq.Dims + 2 }
func (eq *ShallowWater) HasNonconservativeTerms() bool { return true }

func (eq *ShallowWater) Flux(u []float64, orientation int, f []float64) {
	var (
		h   = u[0]
		hvO = u[1+orientation]
		vO  = hvO / h
	)
	f[0] = hvO
	for d := 0; d < eq.Dims; d++ {
		f[1+d] = u[1+d] * vO
	}
	f[1+orientation] += 0.5 * eq.Gravity * h * h
	f[eq.Dims+1] = 0
}

func (eq *ShallowWater) SurfaceFlux(uLL, uRR []float64, orientation int, f []float64) {
	eq.twoPointFlux(eq.SurfaceFluxType, uLL, uRR, orientation, f)
}

func (eq *ShallowWater) VolumeFlux(uLL, uRR []float64, orientation int, f []float64) {
	eq.twoPointFlux(eq.VolumeFluxType, uLL, uRR, orientation, f)
}

// NonconservativeFlux is g h_L b_R on the momentum normal to the face.
func (eq *ShallowWater) NonconservativeFlux(uLL, uRR []float64, orientation int, f []float64) {
	clear(f[:eq.NVariables()])
	f[1+orientation] = eq.Gravity * uLL[0] * uRR[eq.Dims+1]
}

func (eq *ShallowWater) twoPointFlux(ft FluxType, uLL, uRR []float64, orientation int, f []float64) {
	switch ft {
	case FLUX_Central:
		eq.FluxCentral(uLL, uRR, orientation, f)
	case FLUX_LaxFriedrichs:
		eq.FluxLaxFriedrichs(uLL, uRR, orientation, f)
	case FLUX_Wintermeyer:
		eq.FluxWintermeyer(uLL, uRR, orientation, f)
	default:
		panic(fmt.Errorf("unknown flux type %d", ft))
	}
}

func (eq *ShallowWater) FluxCentral(uLL, uRR []float64, orientation int, f []float64) {
	var fL, fR [4]float64
	eq.Flux(uLL, orientation, fL[:])
	eq.Flux(uRR, orientation, fR[:])
	for n := 0; n < eq.NVariables(); n++ {
		f[n] = 0.5 * (fL[n] + fR[n])
	}
}

// FluxLaxFriedrichs adds no dissipation to the bottom topography.
func (eq *ShallowWater) FluxLaxFriedrichs(uLL, uRR []float64, orientation int, f []float64) {
	lambda := eq.MaxAbsSpeed(uLL, uRR, orientation)
	eq.FluxCentral(uLL, uRR, orientation, f)
	for n := 0; n < eq.Dims+1; n++ {
		f[n] -= 0.5 * lambda * (uRR[n] - uLL[n])
	}
}

func (eq *ShallowWater) MaxAbsSpeed(uLL, uRR []float64, orientation int) float64 {
	var (
		vL = uLL[1+orientation] / uLL[0]
		vR = uRR[1+orientation] / uRR[0]
	)
	return math.Max(math.Abs(vL), math.Abs(vR)) +
		math.Max(math.Sqrt(eq.Gravity*uLL[0]), math.Sqrt(eq.Gravity*uRR[0]))
}

// FluxWintermeyer is the entropy conservative two point flux of Wintermeyer
// et al., with the pressure averaged as the product of the depths.
func (eq *ShallowWater) FluxWintermeyer(uLL, uRR []float64, orientation int, f []float64) {
	var (
		vOAvg = 0.5 * (uLL[1+orientation]/uLL[0] + uRR[1+orientation]/uRR[0])
		pAvg  = 0.5 * eq.Gravity * uLL[0] * uRR[0]
	)
	f[0] = 0.5 * (uLL[1+orientation] + uRR[1+orientation])
	for d := 0; d < eq.Dims; d++ {
		f[1+d] = 0.5 * (uLL[1+d] + uRR[1+d]) * vOAvg
	}
	f[1+orientation] += pAvg
	f[eq.Dims+1] = 0
}

// TotalEnergy is ½ h |v|² + ½ g h² + g h b, the entropy of the system.
func (eq *ShallowWater) TotalEnergy(u []float64) (e float64) {
	h := u[0]
	for d := 0; d < eq.Dims; d++ {
		e += 0.5 * u[1+d] * u[1+d] / h
	}
	return e + 0.5*eq.Gravity*h*h + eq.Gravity*h*u[eq.Dims+1]
}

// SlipWall mirrors the normal momentum, depth and bottom are copied.
type SlipWall struct {
	Dims int
}

func (eq *ShallowWater) SlipWall() DGSEM.BoundaryCondition { return SlipWall{Dims: eq.Dims} }

func (sw SlipWall) ExteriorState(uInner []float64, face int, x []float64, t float64, uOuter []float64) {
	copy(uOuter, uInner[:sw.Dims+2])
	uOuter[1+face/2] = -uInner[1+face/2]
}
