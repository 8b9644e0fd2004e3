package DGSEM

import (
	"fmt"

	"github.com/notargets/treedg/DG1D"
	"github.com/notargets/treedg/treemesh"
	"gonum.org/v1/gonum/mat"
)

// MeshProvider is the mesh and topology a semidiscretization is built on.
type MeshProvider interface {
	Dimensions() int
	NumElements() int
	ElementGeometry(e int) (lo [3]float64, length float64)
	InterfaceCatalog() []treemesh.Interface
	BoundaryCatalog() []treemesh.Boundary
	MortarCatalog() []treemesh.Mortar
}

type FaceNode struct {
	Face, Node int
}

// Tables holds the read-only operators, geometry and topology shared by every
// stage. Nodes of an element are numbered i + n*j + n*n*k and the node of a
// face is numbered along the tangential directions in increasing order.
type Tables struct {
	NDims, N, NNodes int
	Np, Nfp, NFaces  int
	NSub             int // Small faces per mortar
	K                int
	Basis            *DG1D.LobattoBasis
	// 1D operators, row major NNodes x NNodes
	Dhat, Dsplit  []float64
	InvWeights    []float64
	SurfaceFactor [2]float64
	// Mortar operators per subface, row major Nfp x Nfp. Forward maps the
	// large face trace to subface s, Reverse projects subface s back.
	MortarForward, MortarReverse [][]float64
	Stride                       [3]int
	NodeIndex                    [][3]int
	FaceNodes                    [][]int      // [NFaces][Nfp] volume node of each face node
	NodeFaces                    [][]FaceNode // [Np] faces touching each volume node, by face
	X                            []float64    // [K][Np][NDims]
	InverseJacobian              []float64    // [K]
	Interfaces                   []treemesh.Interface
	Boundaries                   []treemesh.Boundary
	Mortars                      []treemesh.Mortar
}

func NewTables(mesh MeshProvider, N int) (tb *Tables, err error) {
	ndims := mesh.Dimensions()
	if ndims < 1 || ndims > 3 {
		return nil, fmt.Errorf("%w: mesh dimension %d", ErrShape, ndims)
	}
	if N < 1 {
		return nil, fmt.Errorf("%w: polynomial degree %d", ErrConfig, N)
	}
	lb := DG1D.NewLobattoBasis(N)
	n := lb.NNodes
	tb = &Tables{
		NDims:         ndims,
		N:             N,
		NNodes:        n,
		Np:            ipow(n, ndims),
		Nfp:           ipow(n, ndims-1),
		NFaces:        2 * ndims,
		NSub:          1 << (ndims - 1),
		K:             mesh.NumElements(),
		Basis:         lb,
		Dhat:          flatten(lb.Dhat),
		Dsplit:        flatten(lb.Dsplit),
		InvWeights:    lb.InvWeights,
		SurfaceFactor: lb.SurfaceFactor,
		Stride:        [3]int{1, n, n * n},
		Interfaces:    mesh.InterfaceCatalog(),
		Boundaries:    mesh.BoundaryCatalog(),
		Mortars:       mesh.MortarCatalog(),
	}
	if tb.K == 0 {
		return nil, fmt.Errorf("%w: mesh has no elements", ErrShape)
	}
	if ndims == 1 && len(tb.Mortars) != 0 {
		return nil, fmt.Errorf("%w: mortars in a 1D mesh", ErrTopology)
	}
	if err = treemesh.CheckCoverage(ndims, tb.K, tb.Interfaces, tb.Boundaries, tb.Mortars); err != nil {
		return nil, err
	}
	tb.buildNodeMaps()
	if ndims > 1 {
		tb.buildMortarOperators()
	}
	if err = tb.buildGeometry(mesh); err != nil {
		return nil, err
	}
	return
}

func (tb *Tables) buildNodeMaps() {
	n := tb.NNodes
	tb.NodeIndex = make([][3]int, tb.Np)
	for node := range tb.NodeIndex {
		tb.NodeIndex[node] = [3]int{node % n, (node / n) % n, node / (n * n)}
	}
	tb.FaceNodes = make([][]int, tb.NFaces)
	tb.NodeFaces = make([][]FaceNode, tb.Np)
	for f := 0; f < tb.NFaces; f++ {
		dir, side := f/2, f%2
		tdims := treemesh.TangentialDims(tb.NDims, dir)
		tb.FaceNodes[f] = make([]int, tb.Nfp)
		for j := 0; j < tb.Nfp; j++ {
			var idx [3]int
			idx[dir] = side * (n - 1)
			jj := j
			for _, td := range tdims {
				idx[td] = jj % n
				jj /= n
			}
			node := idx[0] + n*idx[1] + n*n*idx[2]
			tb.FaceNodes[f][j] = node
			tb.NodeFaces[node] = append(tb.NodeFaces[node], FaceNode{Face: f, Node: j})
		}
	}
}

// buildMortarOperators forms the tensor products of the 1D mortar operators
// over the tangential directions of a face, subface s = a + 2b taking half a
// along the first and half b along the second tangential direction.
func (tb *Tables) buildMortarOperators() {
	var (
		n   = tb.NNodes
		nfp = tb.Nfp
		lb  = tb.Basis
	)
	tb.MortarForward = make([][]float64, tb.NSub)
	tb.MortarReverse = make([][]float64, tb.NSub)
	for s := 0; s < tb.NSub; s++ {
		fwd, rev := make([]float64, nfp*nfp), make([]float64, nfp*nfp)
		for j := 0; j < nfp; j++ {
			for jj := 0; jj < nfp; jj++ {
				f, r := 1., 1.
				for t, a, aa := 0, j, jj; t < tb.NDims-1; t, a, aa = t+1, a/n, aa/n {
					half := (s >> t) & 1
					f *= lb.MortarForward[half].At(a%n, aa%n)
					r *= lb.MortarReverse[half].At(a%n, aa%n)
				}
				fwd[j*nfp+jj], rev[j*nfp+jj] = f, r
			}
		}
		tb.MortarForward[s], tb.MortarReverse[s] = fwd, rev
	}
}

func (tb *Tables) buildGeometry(mesh MeshProvider) error {
	tb.X = make([]float64, tb.K*tb.Np*tb.NDims)
	tb.InverseJacobian = make([]float64, tb.K)
	r := tb.Basis.R
	for e := 0; e < tb.K; e++ {
		lo, h := mesh.ElementGeometry(e)
		if !(h > 0) {
			return fmt.Errorf("%w: element %d has length %v", ErrShape, e, h)
		}
		tb.InverseJacobian[e] = 2. / h
		for node, idx := range tb.NodeIndex {
			x := tb.NodeX(e, node)
			for d := range x {
				x[d] = lo[d] + 0.5*(r[idx[d]]+1)*h
			}
		}
	}
	return nil
}

// NodeX is the position of a volume node.
func (tb *Tables) NodeX(e, node int) []float64 {
	o := (e*tb.Np + node) * tb.NDims
	return tb.X[o : o+tb.NDims : o+tb.NDims]
}

// FaceOf returns the large and small face directions of a mortar.
func FaceOf(mo treemesh.Mortar) (largeFace, smallFace int) {
	return 2*mo.Orientation + 1 - mo.LargeSide, 2*mo.Orientation + mo.LargeSide
}

func flatten(m mat.Matrix) (a []float64) {
	nr, nc := m.Dims()
	a = make([]float64, nr*nc)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			a[i*nc+j] = m.At(i, j)
		}
	}
	return
}

func ipow(n, p int) (r int) {
	r = 1
	for ; p > 0; p-- {
		r *= n
	}
	return
}
