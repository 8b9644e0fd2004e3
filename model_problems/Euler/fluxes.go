package Euler

import (
	"fmt"
	"math"
	"strings"
)

type FluxType uint

const (
	FLUX_Central FluxType = iota
	FLUX_LaxFriedrichs
	FLUX_Ranocha
)

var (
	FluxNames = map[string]FluxType{
		"central":        FLUX_Central,
		"average":        FLUX_Central,
		"lax":            FLUX_LaxFriedrichs,
		"lax_friedrichs": FLUX_LaxFriedrichs,
		"ranocha":        FLUX_Ranocha,
	}
	FluxPrintNames = []string{"Central", "Lax Friedrichs", "Ranocha"}
)

func (ft FluxType) String() string {
	if int(ft) < len(FluxPrintNames) {
		return FluxPrintNames[ft]
	}
	return fmt.Sprintf("FluxType(%d)", ft)
}

// Symmetric fluxes are admissible volume fluxes.
func (ft FluxType) Symmetric() bool { return ft == FLUX_Central || ft == FLUX_Ranocha }

func NewFluxType(label string) (ft FluxType, err error) {
	var ok bool
	if ft, ok = FluxNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
	}
	return
}

func (eq *Euler) FluxCentral(uLL, uRR []float64, orientation int, f []float64) {
	var (
		nv     = eq.NVariables()
		fL, fR [5]float64
	)
	eq.Flux(uLL, orientation, fL[:nv])
	eq.Flux(uRR, orientation, fR[:nv])
	for n := 0; n < nv; n++ {
		f[n] = 0.5 * (fL[n] + fR[n])
	}
}

// FluxLaxFriedrichs is the central flux with local Lax-Friedrichs
// dissipation.
func (eq *Euler) FluxLaxFriedrichs(uLL, uRR []float64, orientation int, f []float64) {
	eq.FluxCentral(uLL, uRR, orientation, f)
	lambda := eq.MaxAbsSpeed(uLL, uRR, orientation)
	for n := 0; n < eq.NVariables(); n++ {
		f[n] -= 0.5 * lambda * (uRR[n] - uLL[n])
	}
}

func (eq *Euler) MaxAbsSpeed(uLL, uRR []float64, orientation int) float64 {
	var (
		rhoL, vL, pL = eq.Primitives(uLL)
		rhoR, vR, pR = eq.Primitives(uRR)
		cL           = math.Sqrt(eq.Gamma * pL / rhoL)
		cR           = math.Sqrt(eq.Gamma * pR / rhoR)
	)
	return math.Max(math.Abs(vL[orientation]), math.Abs(vR[orientation])) + math.Max(cL, cR)
}

// FluxRanocha is the entropy conserving and kinetic energy preserving flux
// of Ranocha (2018), built on logarithmic means.
func (eq *Euler) FluxRanocha(uLL, uRR []float64, orientation int, f []float64) {
	var (
		rhoL, vL, pL = eq.Primitives(uLL)
		rhoR, vR, pR = eq.Primitives(uRR)
		rhoMean      = LnMean(rhoL, rhoR)
		// Inverse of the mean of rho/p
		invRhoPMean = pL * pR * InvLnMean(rhoL*pR, rhoR*pL)
		pAvg        = 0.5 * (pL + pR)
		v2Avg       float64
		vAvg        [3]float64
		o           = orientation
	)
	for d := 0; d < eq.Dims; d++ {
		vAvg[d] = 0.5 * (vL[d] + vR[d])
		v2Avg += 0.5 * vL[d] * vR[d]
	}
	f[0] = rhoMean * vAvg[o]
	for d := 0; d < eq.Dims; d++ {
		f[1+d] = f[0] * vAvg[d]
	}
	f[1+o] += pAvg
	f[eq.Dims+1] = f[0]*(v2Avg+invRhoPMean/eq.gm1) + 0.5*(pL*vR[o]+pR*vL[o])
}

// LnMean is the logarithmic mean (y-x)/ln(y/x), evaluated by a series when
// x and y are close.
func LnMean(x, y float64) float64 {
	f2 := (x*(x-2*y) + y*y) / (x*(x+2*y) + y*y)
	if f2 < 1.e-4 {
		return (x + y) / (2 + f2*(2./3+f2*(2./5+f2*2./7)))
	}
	return (y - x) / math.Log(y/x)
}

// InvLnMean is 1/LnMean(x, y).
func InvLnMean(x, y float64) float64 {
	f2 := (x*(x-2*y) + y*y) / (x*(x+2*y) + y*y)
	if f2 < 1.e-4 {
		return (2 + f2*(2./3+f2*(2./5+f2*2./7))) / (x + y)
	}
	return math.Log(y/x) / (y - x)
}
