package DG1D

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LobattoBasis is the collocated Legendre-Gauss-Lobatto reference element on
// [-1,1] used along each coordinate direction of a tensor product element.
type LobattoBasis struct {
	N, NNodes  int
	R, W       []float64 // Nodes and quadrature weights
	InvWeights []float64
	V, Vinv    *mat.Dense
	D          *mat.Dense // Nodal differentiation, D = Vr * Vinv
	Dhat       *mat.Dense // Weak form, Dhat = -M^-1 D^T M
	Dsplit     *mat.Dense // Split form, 2D - M^-1 B, zero diagonal
	// SurfaceFactor lifts a face flux into the end nodes of the element, index
	// 0 is the minus face and 1 the plus face
	SurfaceFactor [2]float64
	// MortarForward interpolates a coarse trace onto the lower [0] and upper
	// [1] halves of the face, MortarReverse is its L2 projection back
	MortarForward, MortarReverse [2]*mat.Dense
}

func NewLobattoBasis(N int) (lb *LobattoBasis) {
	if N < 1 {
		panic(fmt.Errorf("polynomial degree must be >= 1, have %d", N))
	}
	lb = &LobattoBasis{
		N:      N,
		NNodes: N + 1,
	}
	lb.R = JacobiGL(0, 0, N)
	lb.W = make([]float64, N+1)
	lb.InvWeights = make([]float64, N+1)
	fN := float64(N)
	for i, r := range lb.R {
		p := LegendreP(N, r)
		lb.W[i] = 2. / (fN * (fN + 1) * p * p)
		lb.InvWeights[i] = 1. / lb.W[i]
	}
	lb.V = Vandermonde1D(N, lb.R)
	lb.Vinv = mat.NewDense(N+1, N+1, nil)
	if err := lb.Vinv.Inverse(lb.V); err != nil {
		panic(err)
	}
	lb.D = mat.NewDense(N+1, N+1, nil)
	lb.D.Mul(GradVandermonde1D(lb.R, N), lb.Vinv)

	lb.Dhat = mat.NewDense(N+1, N+1, nil)
	lb.Dsplit = mat.NewDense(N+1, N+1, nil)
	for i := 0; i < N+1; i++ {
		for j := 0; j < N+1; j++ {
			lb.Dhat.Set(i, j, -lb.D.At(j, i)*lb.W[j]/lb.W[i])
			if i != j {
				lb.Dsplit.Set(i, j, 2*lb.D.At(i, j))
			}
		}
	}
	lb.SurfaceFactor = [2]float64{lb.InvWeights[0], lb.InvWeights[N]}
	lb.computeMortarOperators()
	return
}

// InterpolationMatrix evaluates the nodal Lagrange basis at r, so that
// I * f interpolates nodal values f onto the points r.
func (lb *LobattoBasis) InterpolationMatrix(r []float64) (I *mat.Dense) {
	I = mat.NewDense(len(r), lb.NNodes, nil)
	I.Mul(Vandermonde1D(lb.N, r), lb.Vinv)
	return
}

// Integrate applies the Lobatto quadrature to nodal values f.
func (lb *LobattoBasis) Integrate(f []float64) (sum float64) {
	for i, w := range lb.W {
		sum += w * f[i]
	}
	return
}
