package DGSEM

import (
	"fmt"
	"strings"
)

type VolumeIntegral uint8

const (
	VolumeIntegralWeakForm VolumeIntegral = iota
	VolumeIntegralFluxDifferencing
	VolumeIntegralShockCapturing
)

var volumeIntegralNames = map[string]VolumeIntegral{
	"weak":              VolumeIntegralWeakForm,
	"weak_form":         VolumeIntegralWeakForm,
	"flux_differencing": VolumeIntegralFluxDifferencing,
	"shock_capturing":   VolumeIntegralShockCapturing,
}

func NewVolumeIntegral(name string) (vi VolumeIntegral, err error) {
	var ok bool
	if vi, ok = volumeIntegralNames[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("%w: unknown volume integral %q", ErrConfig, name)
	}
	return
}

func (vi VolumeIntegral) String() string {
	switch vi {
	case VolumeIntegralWeakForm:
		return "weak"
	case VolumeIntegralFluxDifferencing:
		return "flux_differencing"
	case VolumeIntegralShockCapturing:
		return "shock_capturing"
	}
	return fmt.Sprintf("VolumeIntegral(%d)", vi)
}

type Config struct {
	PolynomialDegree int
	VolumeIntegral   VolumeIntegral
	// BoundaryConditions is keyed by the boundary tag of the mesh catalog
	BoundaryConditions map[int]BoundaryCondition
	Sources            SourceTerms // Optional
	Blending           BlendingProvider
	// Debug checks du for NaN/Inf after every stage
	Debug bool
}
