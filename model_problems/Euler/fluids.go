package Euler

import (
	"math"
)

type FlowFunction uint8

func (pm FlowFunction) String() string {
	strings := []string{
		"Density",
		"Energy",
		"Static Pressure",
		"Dynamic Pressure",
		"Sound Speed",
		"Velocity",
		"Mach",
		"Enthalpy",
		"Entropy",
	}
	return strings[int(pm)]
}

const (
	Density FlowFunction = iota
	Energy
	StaticPressure  // 2
	DynamicPressure // 3
	SoundSpeed      // 4
	Velocity        // 5
	Mach            // 6
	Enthalpy        // 7
	Entropy         // 8, ln(p) - gamma*ln(rho)
)

func (eq *Euler) GetFlowFunction(u []float64, pf FlowFunction) (f float64) {
	var (
		Gamma = eq.Gamma
		rho   = u[0]
		E     = u[eq.Dims+1]
		oorho = 1. / rho
		m2    float64
		p     float64
	)
	for d := 0; d < eq.Dims; d++ {
		m2 += u[1+d] * u[1+d]
	}
	// Calculate p if needed
	switch pf {
	case StaticPressure, SoundSpeed, Mach, Enthalpy, Entropy:
		p = eq.gm1 * (E - 0.5*m2*oorho)
	}

	switch pf {
	case Density:
		f = rho
	case Energy:
		f = E
	case StaticPressure:
		f = p
	case DynamicPressure:
		f = 0.5 * m2 * oorho
	case SoundSpeed:
		f = math.Sqrt(math.Abs(Gamma * p * oorho))
	case Velocity:
		f = math.Sqrt(m2) * oorho
	case Mach:
		C := math.Sqrt(math.Abs(Gamma * p * oorho))
		f = math.Sqrt(m2) * oorho / C
	case Enthalpy:
		f = (E + p) * oorho
	case Entropy:
		f = math.Log(p) - Gamma*math.Log(rho)
	}
	return
}
