package Advection

import (
	"fmt"
	"math"
	"strings"
)

/*
Linear scalar advection with constant velocity a:

				∂u/∂t + ∇⋅(a u) = 0

The central flux ½ a (uL + uR) is the symmetric volume flux. At faces the
Lax-Friedrichs flux with λ = |a_o| reduces to full upwinding.
*/

type FluxType uint

const (
	FLUX_Central FluxType = iota
	FLUX_Upwind
)

var FluxNames = map[string]FluxType{
	"central":        FLUX_Central,
	"upwind":         FLUX_Upwind,
	"lax":            FLUX_Upwind,
	"lax_friedrichs": FLUX_Upwind,
}

func NewFluxType(label string) (ft FluxType, err error) {
	var ok bool
	if ft, ok = FluxNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
	}
	return
}

type Advection struct {
	Dims            int
	Velocity        [3]float64
	SurfaceFluxType FluxType
}

func NewAdvection(ndims int, velocity [3]float64, surface FluxType) (eq *Advection, err error) {
	if ndims < 1 || ndims > 3 {
		return nil, fmt.Errorf("dimension must be 1, 2 or 3, have %d", ndims)
	}
	eq = &Advection{Dims: ndims, SurfaceFluxType: surface}
	copy(eq.Velocity[:ndims], velocity[:ndims])
	return
}

func (eq *Advection) NDims() int                    { return eq.Dims }
func (eq *Advection) NVariables() int               { return 1 }
func (eq *Advection) HasNonconservativeTerms() bool { return false }

func (eq *Advection) Flux(u []float64, orientation int, f []float64) {
	f[0] = eq.Velocity[orientation] * u[0]
}

func (eq *Advection) VolumeFlux(uLL, uRR []float64, orientation int, f []float64) {
	f[0] = 0.5 * eq.Velocity[orientation] * (uLL[0] + uRR[0])
}

func (eq *Advection) SurfaceFlux(uLL, uRR []float64, orientation int, f []float64) {
	a := eq.Velocity[orientation]
	f[0] = 0.5 * a * (uLL[0] + uRR[0])
	if eq.SurfaceFluxType == FLUX_Upwind {
		f[0] -= 0.5 * math.Abs(a) * (uRR[0] - uLL[0])
	}
}

func (eq *Advection) NonconservativeFlux(uLL, uRR []float64, orientation int, f []float64) {
	f[0] = 0
}

// ConvergenceTest is 1 + ½ sin(π Σ(x - a t)), periodic on domains of
// length 2.
func (eq *Advection) ConvergenceTest(x []float64, t float64, u []float64) {
	var phase float64
	for d := 0; d < eq.Dims; d++ {
		phase += x[d] - eq.Velocity[d]*t
	}
	u[0] = 1 + 0.5*math.Sin(math.Pi*phase)
}

// Gaussian is a pulse of unit height and width 0.1 centered at the origin
// at t = 0.
func (eq *Advection) Gaussian(x []float64, t float64, u []float64) {
	var r2 float64
	for d := 0; d < eq.Dims; d++ {
		xd := x[d] - eq.Velocity[d]*t
		r2 += xd * xd
	}
	u[0] = math.Exp(-r2 / 0.01)
}

func (eq *Advection) InitialCondition(label string) (ic func(x []float64, t float64, u []float64), err error) {
	switch strings.ToLower(label) {
	case "convergence_test", "sine":
		ic = eq.ConvergenceTest
	case "gaussian":
		ic = eq.Gaussian
	default:
		err = fmt.Errorf("unable to use init type named %s", label)
	}
	return
}

// DeviceSource is the OKL implementation of the fluxes.
func (eq *Advection) DeviceSource() string {
	upwind := 0
	if eq.SurfaceFluxType == FLUX_Upwind {
		upwind = 1
	}
	return fmt.Sprintf(`#define NVAR 1
#define NDIM %d
#define HAS_NONCONS 0
#define UPWIND %d
#define EQ_A0 %.17g
#define EQ_A1 %.17g
#define EQ_A2 %.17g
`, eq.Dims, upwind, eq.Velocity[0], eq.Velocity[1], eq.Velocity[2]) + advectionOKL
}

const advectionOKL = `
real_t eq_velocity(const int_t o) {
  return (o == 0) ? EQ_A0 : ((o == 1) ? EQ_A1 : EQ_A2);
}

void eq_flux(const real_t *u, const int_t o, real_t *f) {
  f[0] = eq_velocity(o) * u[0];
}

void eq_volume_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  f[0] = 0.5 * eq_velocity(o) * (uL[0] + uR[0]);
}

void eq_surface_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  const real_t a = eq_velocity(o);
  f[0] = 0.5 * a * (uL[0] + uR[0]);
  if (UPWIND) f[0] -= 0.5 * fabs(a) * (uR[0] - uL[0]);
}

void eq_noncons_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  f[0] = 0;
}
`
