package DG1D

import (
	"gonum.org/v1/gonum/mat"
)

// MortarLower and MortarUpper index the halves of a coarse face.
const (
	MortarLower = 0
	MortarUpper = 1
)

// computeMortarOperators builds the L2 mortar operators between a coarse
// face and its two halves. The forward operators sample the coarse
// polynomial at the fine nodes, the reverse operators solve
//
//	Mc * R = 1/2 * Int_{-1}^{1} l_i(x(xi)) l_j(xi) dxi
//
// with N+1 point Gauss quadrature, exact for the degree 2N integrands.
func (lb *LobattoBasis) computeMortarOperators() {
	var (
		N      = lb.N
		n      = lb.NNodes
		xq, wq = JacobiGQ(0, 0, N)
	)
	Iq := lb.InterpolationMatrix(xq)
	W := mat.NewDiagDense(len(wq), wq)
	var WIq, Mc mat.Dense
	WIq.Mul(W, Iq)
	Mc.Mul(Iq.T(), &WIq)

	for half := MortarLower; half <= MortarUpper; half++ {
		shift := -1.
		if half == MortarUpper {
			shift = 1.
		}
		fine := make([]float64, n)
		for i, r := range lb.R {
			fine[i] = 0.5 * (r + shift)
		}
		lb.MortarForward[half] = lb.InterpolationMatrix(fine)

		coarseAtQ := make([]float64, len(xq))
		for q, r := range xq {
			coarseAtQ[q] = 0.5 * (r + shift)
		}
		var B mat.Dense
		B.Mul(lb.InterpolationMatrix(coarseAtQ).T(), &WIq)
		B.Scale(0.5, &B)
		R := mat.NewDense(n, n, nil)
		if err := R.Solve(&Mc, &B); err != nil {
			panic(err)
		}
		lb.MortarReverse[half] = R
	}
}
