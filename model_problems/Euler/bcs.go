package Euler

import "github.com/notargets/treedg/DGSEM"

// SlipWall mirrors the normal momentum of the interior state, so that the
// numerical flux carries only the wall pressure.
type SlipWall struct {
	Dims int
}

func (eq *Euler) SlipWall() DGSEM.BoundaryCondition { return SlipWall{Dims: eq.Dims} }

func (sw SlipWall) ExteriorState(uInner []float64, face int, x []float64, t float64, uOuter []float64) {
	copy(uOuter, uInner[:sw.Dims+2])
	uOuter[1+face/2] = -uInner[1+face/2]
}
