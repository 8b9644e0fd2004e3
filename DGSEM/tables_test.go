package DGSEM

import (
	"testing"

	"github.com/notargets/treedg/treemesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTables(t *testing.T) {
	{ // 2D node and face maps
		m, err := treemesh.New(treemesh.Config{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 1,
			Periodic: [3]bool{true, true}})
		require.NoError(t, err)
		tb, err := NewTables(m, 2)
		require.NoError(t, err)
		assert.Equal(t, 9, tb.Np)
		assert.Equal(t, 3, tb.Nfp)
		assert.Equal(t, 2, tb.NSub)
		assert.Equal(t, []int{0, 3, 6}, tb.FaceNodes[0])
		assert.Equal(t, []int{2, 5, 8}, tb.FaceNodes[1])
		assert.Equal(t, []int{0, 1, 2}, tb.FaceNodes[2])
		assert.Equal(t, []int{6, 7, 8}, tb.FaceNodes[3])
		assert.Equal(t, []FaceNode{{Face: 0, Node: 0}, {Face: 2, Node: 0}}, tb.NodeFaces[0])
		assert.Equal(t, 0, len(tb.NodeFaces[4]))
		assert.Equal(t, []FaceNode{{Face: 1, Node: 2}, {Face: 3, Node: 2}}, tb.NodeFaces[8])
		for e := 0; e < tb.K; e++ {
			assert.InDelta(t, 4., tb.InverseJacobian[e], 1.e-14)
			lo, h := m.ElementGeometry(e)
			x := tb.NodeX(e, 5) // i=2, j=1
			assert.InDelta(t, lo[0]+h, x[0], 1.e-14)
			assert.InDelta(t, lo[1]+0.5*h, x[1], 1.e-14)
		}
	}
	{ // 3D face node ordering follows the tangential directions
		m, err := treemesh.New(treemesh.Config{NDims: 3, Hi: [3]float64{1, 1, 1}, Periodic: [3]bool{true, true, true}})
		require.NoError(t, err)
		tb, err := NewTables(m, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 5, 7}, tb.FaceNodes[1]) // x_pos, (y,z)
		assert.Equal(t, []int{0, 1, 4, 5}, tb.FaceNodes[2]) // y_neg, (x,z)
		assert.Equal(t, []int{4, 5, 6, 7}, tb.FaceNodes[5]) // z_pos, (x,y)
	}
	for ndims := 2; ndims <= 3; ndims++ { // Projection after interpolation is the identity on a face
		m, err := treemesh.New(treemesh.Config{NDims: ndims, Hi: [3]float64{1, 1, 1}})
		require.NoError(t, err)
		tb, err := NewTables(m, 3)
		require.NoError(t, err)
		nfp := tb.Nfp
		for j := 0; j < nfp; j++ {
			for jj := 0; jj < nfp; jj++ {
				var sum float64
				for s := 0; s < tb.NSub; s++ {
					for k := 0; k < nfp; k++ {
						sum += tb.MortarReverse[s][j*nfp+k] * tb.MortarForward[s][k*nfp+jj]
					}
				}
				exact := 0.
				if j == jj {
					exact = 1
				}
				assert.InDeltaf(t, exact, sum, 1.e-11, "%dD (%d,%d)", ndims, j, jj)
			}
		}
	}
	{ // Broken coverage is rejected on ingestion
		m, err := treemesh.New(treemesh.Config{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 2})
		require.NoError(t, err)
		m.Interfaces = m.Interfaces[1:]
		_, err = NewTables(m, 2)
		assert.ErrorIs(t, err, ErrTopology)
	}
}
