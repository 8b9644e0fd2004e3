package DGSEM

// Equation is the conservation law the pipeline is generic over. Vectors
// hold NVariables entries, orientation selects the coordinate direction.
// Implementations are called concurrently and must not keep state between
// calls.
type Equation interface {
	NDims() int
	NVariables() int
	// Flux is the exact flux
	Flux(u []float64, orientation int, f []float64)
	// SurfaceFlux is the numerical flux between the states on the minus (uLL)
	// and plus (uRR) sides of a face
	SurfaceFlux(uLL, uRR []float64, orientation int, f []float64)
	// VolumeFlux is the symmetric two-point flux for flux differencing
	VolumeFlux(uLL, uRR []float64, orientation int, f []float64)
	HasNonconservativeTerms() bool
	// NonconservativeFlux is the non-conservative contribution at uLL due to
	// uRR, zero when HasNonconservativeTerms is false
	NonconservativeFlux(uLL, uRR []float64, orientation int, f []float64)
}

// BoundaryCondition supplies the exterior state at a boundary face node. face
// is the outward direction 2*orientation+side and x the node position.
type BoundaryCondition interface {
	ExteriorState(uInner []float64, face int, x []float64, t float64, uOuter []float64)
}

type BoundaryConditionFunc func(uInner []float64, face int, x []float64, t float64, uOuter []float64)

func (bf BoundaryConditionFunc) ExteriorState(uInner []float64, face int, x []float64, t float64,
	uOuter []float64) {
	bf(uInner, face, x, t, uOuter)
}

// BoundaryConditionDirichlet imposes the state given by a function of
// position and time.
type BoundaryConditionDirichlet struct {
	State func(x []float64, t float64, u []float64)
}

func (bc BoundaryConditionDirichlet) ExteriorState(uInner []float64, face int, x []float64, t float64,
	uOuter []float64) {
	bc.State(x, t, uOuter)
}

// BoundaryConditionOutflow extrapolates the interior state.
type BoundaryConditionOutflow struct{}

func (BoundaryConditionOutflow) ExteriorState(uInner []float64, face int, x []float64, t float64,
	uOuter []float64) {
	copy(uOuter, uInner)
}

// SourceTerms adds a pointwise contribution s(u, x, t) to the residual.
type SourceTerms interface {
	Source(u, x []float64, t float64, s []float64)
}

type SourceFunc func(u, x []float64, t float64, s []float64)

func (sf SourceFunc) Source(u, x []float64, t float64, s []float64) { sf(u, x, t, s) }

// BlendingProvider yields the shock capturing coefficient of every element,
// zero for pure flux differencing and one for pure finite volumes.
type BlendingProvider interface {
	Blending(u []float64, t float64, alpha []float64)
}

// ConstantBlending uses the same coefficient in every element.
type ConstantBlending float64

func (cb ConstantBlending) Blending(u []float64, t float64, alpha []float64) {
	for k := range alpha {
		alpha[k] = float64(cb)
	}
}

// BlendingFunc adapts a function to a BlendingProvider.
type BlendingFunc func(u []float64, t float64, alpha []float64)

func (bf BlendingFunc) Blending(u []float64, t float64, alpha []float64) { bf(u, t, alpha) }
