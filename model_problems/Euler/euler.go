package Euler

import (
	"fmt"
)

// Euler is the compressible Euler system of an ideal gas in 1, 2 or 3
// dimensions. The state is (rho, rho*v_1..rho*v_Dims, E).
type Euler struct {
	Dims                            int
	Gamma                           float64
	SurfaceFluxType, VolumeFluxType FluxType
	gm1                             float64
}

func NewEuler(ndims int, gamma float64, surface, volume FluxType) (eq *Euler, err error) {
	if ndims < 1 || ndims > 3 {
		return nil, fmt.Errorf("dimension must be 1, 2 or 3, have %d", ndims)
	}
	if gamma <= 1 {
		return nil, fmt.Errorf("gamma must exceed one, have %v", gamma)
	}
	if !volume.Symmetric() {
		return nil, fmt.Errorf("%s flux is not symmetric and can not be used as volume flux", volume)
	}
	eq = &Euler{
		Dims:            ndims,
		Gamma:           gamma,
		SurfaceFluxType: surface,
		VolumeFluxType:  volume,
		gm1:             gamma - 1,
	}
	return
}

func (eq *Euler) NDims() int                    { return eq.Dims }
func (eq *Euler) NVariables() int               { return eq.Dims + 2 }
func (eq *Euler) HasNonconservativeTerms() bool { return false }

func (eq *Euler) NonconservativeFlux(uLL, uRR []float64, orientation int, f []float64) {
	clear(f[:eq.NVariables()])
}

func (eq *Euler) Flux(u []float64, orientation int, f []float64) {
	var (
		_, v, p = eq.Primitives(u)
		E       = u[eq.Dims+1]
		mflux   = u[1+orientation]
	)
	f[0] = mflux
	for d := 0; d < eq.Dims; d++ {
		f[1+d] = mflux * v[d]
	}
	f[1+orientation] += p
	f[eq.Dims+1] = (E + p) * v[orientation]
}

func (eq *Euler) SurfaceFlux(uLL, uRR []float64, orientation int, f []float64) {
	eq.twoPointFlux(eq.SurfaceFluxType, uLL, uRR, orientation, f)
}

func (eq *Euler) VolumeFlux(uLL, uRR []float64, orientation int, f []float64) {
	eq.twoPointFlux(eq.VolumeFluxType, uLL, uRR, orientation, f)
}

func (eq *Euler) twoPointFlux(ft FluxType, uLL, uRR []float64, orientation int, f []float64) {
	switch ft {
	case FLUX_Central:
		eq.FluxCentral(uLL, uRR, orientation, f)
	case FLUX_LaxFriedrichs:
		eq.FluxLaxFriedrichs(uLL, uRR, orientation, f)
	case FLUX_Ranocha:
		eq.FluxRanocha(uLL, uRR, orientation, f)
	default:
		panic(fmt.Errorf("unknown flux type %d", ft))
	}
}

// Primitives returns density, velocity and pressure.
func (eq *Euler) Primitives(u []float64) (rho float64, v [3]float64, p float64) {
	var ke float64
	rho = u[0]
	for d := 0; d < eq.Dims; d++ {
		v[d] = u[1+d] / rho
		ke += v[d] * u[1+d]
	}
	p = eq.gm1 * (u[eq.Dims+1] - 0.5*ke)
	return
}

// Conservatives is the inverse of Primitives.
func (eq *Euler) Conservatives(rho float64, v [3]float64, p float64, u []float64) {
	var v2 float64
	u[0] = rho
	for d := 0; d < eq.Dims; d++ {
		u[1+d] = rho * v[d]
		v2 += v[d] * v[d]
	}
	u[eq.Dims+1] = p/eq.gm1 + 0.5*rho*v2
}

// EntropyVariables are the derivatives of the entropy -rho*s/(gamma-1)
// with respect to the conservative variables, s = ln(p) - gamma*ln(rho).
func (eq *Euler) EntropyVariables(u, w []float64) {
	var (
		rho, v, p = eq.Primitives(u)
		s         = eq.GetFlowFunction(u, Entropy)
		rhoP      = rho / p
		v2        float64
	)
	for d := 0; d < eq.Dims; d++ {
		v2 += v[d] * v[d]
		w[1+d] = rhoP * v[d]
	}
	w[0] = (eq.Gamma-s)/eq.gm1 - 0.5*rhoP*v2
	w[eq.Dims+1] = -rhoP
}
