package DG1D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestJacobiGQ(t *testing.T) {
	{ // Gauss-Legendre integrates x^k exactly for k <= 2N+1
		N := 4
		x, w := JacobiGQ(0, 0, N)
		assert.Equal(t, N+1, len(x))
		for k := 0; k <= 2*N+1; k++ {
			var sum, exact float64
			for i := range x {
				sum += w[i] * math.Pow(x[i], float64(k))
			}
			if k%2 == 0 {
				exact = 2. / float64(k+1)
			}
			assert.InDeltaf(t, exact, sum, 1.e-13, "moment %d", k)
		}
	}
	{ // Total weight of a Jacobi rule is 2^(a+b+1) B(a+1,b+1)
		alpha, beta := 0.3, 0.7
		_, w := JacobiGQ(alpha, beta, 5)
		var sum float64
		for _, wi := range w {
			sum += wi
		}
		exact := math.Pow(2, alpha+beta+1) * math.Gamma(alpha+1) * math.Gamma(beta+1) / math.Gamma(alpha+beta+2)
		assert.InDeltaf(t, exact, sum, 1.e-12, "sum(w)")
	}
	{ // Orthonormality of JacobiP under Gauss-Legendre
		x, w := JacobiGQ(0, 0, 8)
		for m := 0; m < 6; m++ {
			pm := JacobiP(x, 0, 0, m)
			for n := 0; n < 6; n++ {
				pn := JacobiP(x, 0, 0, n)
				var g float64
				for i := range x {
					g += w[i] * pm[i] * pn[i]
				}
				if m == n {
					assert.InDeltaf(t, 1., g, 1.e-12, "norm %d", m)
				} else {
					assert.InDeltaf(t, 0., g, 1.e-12, "inner product %d,%d", m, n)
				}
			}
		}
	}
}

func TestLobattoBasis(t *testing.T) {
	{ // Known N=3 nodes and weights
		lb := NewLobattoBasis(3)
		r5 := 1. / math.Sqrt(5)
		for i, x := range []float64{-1, -r5, r5, 1} {
			assert.InDeltaf(t, x, lb.R[i], 1.e-14, "node %d", i)
		}
		for i, w := range []float64{1. / 6, 5. / 6, 5. / 6, 1. / 6} {
			assert.InDeltaf(t, w, lb.W[i], 1.e-14, "weight %d", i)
		}
		assert.InDelta(t, 6., lb.SurfaceFactor[0], 1.e-12)
		assert.InDelta(t, 6., lb.SurfaceFactor[1], 1.e-12)
	}
	for N := 1; N <= 7; N++ {
		lb := NewLobattoBasis(N)
		n := lb.NNodes
		var wsum float64
		for _, w := range lb.W {
			wsum += w
		}
		assert.InDeltaf(t, 2., wsum, 1.e-13, "N=%d sum of weights", N)

		// D differentiates polynomials of degree <= N exactly
		for k := 0; k <= N; k++ {
			f := make([]float64, n)
			for i, r := range lb.R {
				f[i] = math.Pow(r, float64(k))
			}
			var df mat.VecDense
			df.MulVec(lb.D, mat.NewVecDense(n, f))
			for i, r := range lb.R {
				exact := 0.
				if k > 0 {
					exact = float64(k) * math.Pow(r, float64(k-1))
				}
				assert.InDeltaf(t, exact, df.AtVec(i), 1.e-10, "N=%d d/dx x^%d at node %d", N, k, i)
			}
		}

		// Summation by parts, W D + D^T W = diag(-1, 0, ..., 0, 1)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				q := lb.W[i]*lb.D.At(i, j) + lb.W[j]*lb.D.At(j, i)
				b := 0.
				if i == j && i == 0 {
					b = -1
				} else if i == j && i == N {
					b = 1
				}
				assert.InDeltaf(t, b, q, 1.e-12, "N=%d SBP (%d,%d)", N, i, j)
			}
		}

		// Dhat = D - M^-1 B and Dsplit = 2D - M^-1 B with a zero diagonal
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				mb := 0.
				if i == j && i == 0 {
					mb = -lb.InvWeights[0]
				} else if i == j && i == N {
					mb = lb.InvWeights[N]
				}
				assert.InDeltaf(t, lb.D.At(i, j)-mb, lb.Dhat.At(i, j), 1.e-11, "N=%d Dhat (%d,%d)", N, i, j)
				assert.InDeltaf(t, 2*lb.D.At(i, j)-mb, lb.Dsplit.At(i, j), 1.e-11, "N=%d Dsplit (%d,%d)", N, i, j)
			}
			assert.Equal(t, 0., lb.Dsplit.At(i, i))
		}
	}
}

func TestMortarOperators(t *testing.T) {
	for N := 1; N <= 6; N++ {
		lb := NewLobattoBasis(N)
		n := lb.NNodes

		// Forward interpolation reproduces x on each half
		xc := mat.NewVecDense(n, append([]float64{}, lb.R...))
		for half, shift := range []float64{-1, 1} {
			var xf mat.VecDense
			xf.MulVec(lb.MortarForward[half], xc)
			for i, r := range lb.R {
				assert.InDeltaf(t, 0.5*(r+shift), xf.AtVec(i), 1.e-12, "N=%d half %d node %d", N, half, i)
			}
		}

		// Projection after interpolation is the identity
		var P, Pu mat.Dense
		P.Mul(lb.MortarReverse[MortarLower], lb.MortarForward[MortarLower])
		Pu.Mul(lb.MortarReverse[MortarUpper], lb.MortarForward[MortarUpper])
		P.Add(&P, &Pu)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				exact := 0.
				if i == j {
					exact = 1
				}
				assert.InDeltaf(t, exact, P.At(i, j), 1.e-11, "N=%d R*F (%d,%d)", N, i, j)
			}
		}

		// Projection conserves the integral of the fine flux
		f := make([]float64, n)
		for i, r := range lb.R {
			f[i] = math.Sin(1.3*r) + 0.2*r*r
		}
		for half := MortarLower; half <= MortarUpper; half++ {
			var fc mat.VecDense
			fc.MulVec(lb.MortarReverse[half], mat.NewVecDense(n, f))
			assert.InDeltaf(t, 0.5*lb.Integrate(f), lb.Integrate(fc.RawVector().Data), 1.e-12,
				"N=%d half %d conservation", N, half)
		}
	}
}
