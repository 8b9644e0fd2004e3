package DG1D

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGL returns the N+1 Gauss-Lobatto points of the Jacobi polynomial
// P^(alpha,beta)_N on [-1,1], endpoints included.
func JacobiGL(alpha, beta float64, N int) (x []float64) {
	x = make([]float64, N+1)
	if N == 1 {
		x[0] = -1
		x[1] = 1
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	x[0] = -1
	x[N] = 1
	for i := 1; i < N; i++ {
		x[i] = xint[i-1]
	}
	return
}

// JacobiGQ returns the N+1 Gauss points and weights of the Jacobi polynomial
// P^(alpha,beta)_(N+1), from the eigenvalues of the Golub-Welsch matrix.
func JacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	var (
		fac        float64
		h1, d0, d1 []float64
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{2.}
		return
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: diag(-1/2*(alpha^2-beta^2)./(h1+2)./h1)
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal: diag(2./(h1(1:N)+2).*sqrt((1:N).*((1:N)+alpha+beta) .* ((1:N)+alpha).*((1:N)+beta)./(h1(1:N)+1)./(h1(1:N)+3)),1);
	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := mat.NewSymDense(N+1, nil)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, d0[i])
		if i < N {
			JJ.SetSym(i, i+1, d1[i])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)

	VVr := mat.NewDense(N+1, N+1, nil)
	eig.VectorsTo(VVr)
	g0 := gamma0(alpha, beta)
	w = make([]float64, N+1)
	for j := 0; j < N+1; j++ {
		v := VVr.At(0, j)
		w[j] = v * v * g0
	}
	return
}

// JacobiP evaluates the orthonormal Jacobi polynomial of order N at r.
func JacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	var (
		Nc = len(r)
	)
	pm := make([]float64, Nc)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	for i := range pm {
		pm[i] = rg
	}
	if N == 0 {
		return pm
	}
	ab := alpha + beta
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	pc := make([]float64, Nc)
	for i := range pc {
		pc[i] = rg1 * ((ab+2.0)*r[i]/2.0 + (alpha-beta)/2.0)
	}
	if N == 1 {
		return pc
	}

	a1 := alpha + 1.
	b1 := beta + 1.
	ab1 := ab + 1.
	aold := 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		pn := make([]float64, Nc)
		for j := range pn {
			pn[j] = (-aold*pm[j] + (r[j]-bnew)*pc[j]) / anew
		}
		pm, pc = pc, pn
		aold = anew
	}
	return pc
}

func GradJacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		p = make([]float64, len(r))
		return
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i, val := range p {
		p[i] = val * fac
	}
	return
}

// Vandermonde1D returns V[i][j] = P_j(r_i) for the orthonormal Legendre basis.
func Vandermonde1D(N int, r []float64) (V *mat.Dense) {
	V = mat.NewDense(len(r), N+1, nil)
	for j := 0; j < N+1; j++ {
		V.SetCol(j, JacobiP(r, 0, 0, j))
	}
	return
}

func GradVandermonde1D(r []float64, N int) (Vr *mat.Dense) {
	Vr = mat.NewDense(len(r), N+1, nil)
	for i := 0; i < N+1; i++ {
		Vr.SetCol(i, GradJacobiP(r, 0, 0, i))
	}
	return
}

// LegendreP evaluates the classical Legendre polynomial P_N(x), P_N(1) = 1.
func LegendreP(N int, x float64) float64 {
	if N == 0 {
		return 1
	}
	pm, p := 1., x
	for n := 1; n < N; n++ {
		fn := float64(n)
		pm, p = p, ((2*fn+1)*x*p-fn*pm)/(fn+1)
	}
	return p
}
