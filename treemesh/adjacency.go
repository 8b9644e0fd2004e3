package treemesh

import (
	"github.com/james-bowman/sparse"
)

// Adjacency returns the symmetric element connectivity graph, one unit entry
// for every pair of distinct elements sharing a face through an interface or
// a mortar.
func (m *Mesh) Adjacency() *sparse.CSR {
	var (
		K    = len(m.Elements)
		nsub = 1 << (m.Dim - 1)
	)
	dok := sparse.NewDOK(K, K)
	link := func(a, b int) {
		if a != b {
			dok.Set(a, b, 1)
			dok.Set(b, a, 1)
		}
	}
	for _, f := range m.Interfaces {
		link(f.Left, f.Right)
	}
	for _, mo := range m.Mortars {
		for s := 0; s < nsub; s++ {
			link(mo.Large, mo.Small[s])
		}
	}
	return dok.ToCSR()
}

// Neighbors lists the elements adjacent to element e in a graph returned by
// Adjacency.
func Neighbors(adj *sparse.CSR, e int) []int {
	raw := adj.RawMatrix()
	return raw.Ind[raw.Indptr[e]:raw.Indptr[e+1]]
}
