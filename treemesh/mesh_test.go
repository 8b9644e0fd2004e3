package treemesh

import (
	"errors"
	"testing"

	"github.com/notargets/treedg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMesh1D(t *testing.T) {
	{ // Periodic uniform mesh
		m, err := New(Config{NDims: 1, Lo: [3]float64{-2}, Hi: [3]float64{2}, InitialLevel: 5,
			Periodic: [3]bool{true}})
		require.NoError(t, err)
		assert.Equal(t, 32, m.NumElements())
		assert.Equal(t, 32, len(m.Interfaces))
		assert.Equal(t, 0, len(m.Boundaries))
		assert.Equal(t, 0, len(m.Mortars))
		for e, el := range m.Elements {
			assert.InDelta(t, 0.125, el.Length, 1.e-15)
			assert.InDelta(t, -2+0.125*float64(e), el.Lo[0], 1.e-14)
		}
		// The wrap around interface couples the last element to the first
		var wrap bool
		for _, f := range m.Interfaces {
			if f.Left == 31 && f.Right == 0 {
				wrap = true
			}
		}
		assert.True(t, wrap)
	}
	{ // Walled uniform mesh
		m, err := New(Config{NDims: 1, Lo: [3]float64{-2}, Hi: [3]float64{2}, InitialLevel: 5})
		require.NoError(t, err)
		assert.Equal(t, 31, len(m.Interfaces))
		require.Equal(t, 2, len(m.Boundaries))
		assert.Equal(t, Boundary{Element: 0, Orientation: 0, Side: 0, Face: 0, Tag: 0}, m.Boundaries[0])
		assert.Equal(t, Boundary{Element: 31, Orientation: 0, Side: 1, Face: 1, Tag: 1}, m.Boundaries[1])
	}
	{ // Level changes in 1D are plain interfaces
		m, err := New(Config{NDims: 1, Lo: [3]float64{0}, Hi: [3]float64{1}, InitialLevel: 2,
			Refine: []RefineBox{{Lo: [3]float64{0.3}, Hi: [3]float64{0.7}, Level: 4}}})
		require.NoError(t, err)
		assert.Equal(t, 0, len(m.Mortars))
		assert.Equal(t, m.NumElements()-1, len(m.Interfaces))
		for _, f := range m.Interfaces {
			l, r := m.Elements[f.Left], m.Elements[f.Right]
			assert.InDelta(t, l.Lo[0]+l.Length, r.Lo[0], 1.e-14)
			assert.LessOrEqual(t, abs(l.Level-r.Level), 1)
		}
	}
}

func TestMesh2D(t *testing.T) {
	cfg := Config{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 2,
		Refine: []RefineBox{{Hi: [3]float64{0.49, 0.49}, Level: 3}}}
	{
		m, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, 28, m.NumElements())
		assert.Equal(t, 40, len(m.Interfaces))
		assert.Equal(t, 20, len(m.Boundaries))
		assert.Equal(t, 4, len(m.Mortars))
		for _, f := range m.Interfaces {
			assert.Equal(t, m.Elements[f.Left].Level, m.Elements[f.Right].Level)
		}
		large, ok := m.ElementIndex(types.NewCellKey(2, [3]int{2, 0, 0}))
		require.True(t, ok)
		s0, _ := m.ElementIndex(types.NewCellKey(3, [3]int{3, 0, 0}))
		s1, _ := m.ElementIndex(types.NewCellKey(3, [3]int{3, 1, 0}))
		var found bool
		for _, mo := range m.Mortars {
			assert.Equal(t, m.Elements[mo.Large].Level+1, m.Elements[mo.Small[0]].Level)
			assert.Equal(t, m.Elements[mo.Large].Level+1, m.Elements[mo.Small[1]].Level)
			if mo.Large == large {
				found = true
				assert.Equal(t, 0, mo.Orientation)
				assert.Equal(t, 1, mo.LargeSide)
				assert.Equal(t, [2]int{s0, s1}, [2]int{mo.Small[0], mo.Small[1]})
			}
		}
		assert.True(t, found)
	}
	{ // Periodic wrap adds mortars on the domain edges
		pcfg := cfg
		pcfg.Periodic = [3]bool{true, true}
		m, err := New(pcfg)
		require.NoError(t, err)
		assert.Equal(t, 0, len(m.Boundaries))
		assert.Equal(t, 8, len(m.Mortars))
	}
	{ // A deep corner refinement is balanced to one level across faces
		m, err := New(Config{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 1,
			Refine: []RefineBox{{Hi: [3]float64{0.3, 0.3}, Level: 5}}})
		require.NoError(t, err)
		assert.Greater(t, len(m.Mortars), 0)
		for _, f := range m.Interfaces {
			assert.Equal(t, m.Elements[f.Left].Level, m.Elements[f.Right].Level)
		}
		for _, mo := range m.Mortars {
			for s := 0; s < 2; s++ {
				assert.Equal(t, m.Elements[mo.Large].Level+1, m.Elements[mo.Small[s]].Level)
			}
		}
	}
}

func TestMesh3D(t *testing.T) {
	m, err := New(Config{NDims: 3, Hi: [3]float64{1, 1, 1}, InitialLevel: 1,
		Refine: []RefineBox{{Hi: [3]float64{0.4, 0.4, 0.4}, Level: 2}}})
	require.NoError(t, err)
	assert.Equal(t, 15, m.NumElements())
	assert.Equal(t, 3, len(m.Mortars))
	for _, mo := range m.Mortars {
		assert.Equal(t, 1, mo.LargeSide)
		seen := make(map[int]bool)
		for s := 0; s < 4; s++ {
			assert.Equal(t, 2, m.Elements[mo.Small[s]].Level)
			seen[mo.Small[s]] = true
		}
		assert.Equal(t, 4, len(seen))
	}
	// Each coarse cell touches three walls, the refined corner has four
	// faces on each of its three walls
	assert.Equal(t, 7*3+3*4, len(m.Boundaries))
	assert.NoError(t, m.Validate())
}

func TestCoverage(t *testing.T) {
	m, err := New(Config{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 2,
		Refine: []RefineBox{{Hi: [3]float64{0.49, 0.49}, Level: 3}}})
	require.NoError(t, err)
	err = CheckCoverage(2, m.NumElements(), m.Interfaces[1:], m.Boundaries, m.Mortars)
	assert.True(t, errors.Is(err, ErrTopology))
	err = CheckCoverage(2, m.NumElements(), m.Interfaces, append(m.Boundaries, m.Boundaries[0]), m.Mortars)
	assert.True(t, errors.Is(err, ErrTopology))
	err = CheckCoverage(2, m.NumElements(), m.Interfaces, m.Boundaries, m.Mortars[1:])
	assert.True(t, errors.Is(err, ErrTopology))
	bad := append([]Boundary{}, m.Boundaries...)
	bad[0].Face = 3
	err = CheckCoverage(2, m.NumElements(), m.Interfaces, bad, m.Mortars)
	assert.True(t, errors.Is(err, ErrTopology))

	_, err = New(Config{NDims: 2, Hi: [3]float64{1, 2}, InitialLevel: 2})
	assert.Error(t, err)
	_, err = New(Config{NDims: 4, Hi: [3]float64{1, 1, 1}})
	assert.Error(t, err)
}

func TestPartition(t *testing.T) {
	m, err := New(Config{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 3, Periodic: [3]bool{true, true},
		Partitions: 4})
	require.NoError(t, err)
	adj := m.Adjacency()
	for e := 0; e < m.NumElements(); e++ {
		nbs := Neighbors(adj, e)
		assert.Equal(t, 4, len(nbs))
		for _, nb := range nbs {
			assert.Equal(t, 1., adj.At(nb, e))
		}
	}
	ranges := m.PartitionRanges()
	require.Equal(t, 4, len(ranges))
	var next int
	for p, r := range ranges {
		assert.Equal(t, next, r[0])
		assert.Equal(t, 16, r[1]-r[0])
		for e := r[0]; e < r[1]; e++ {
			assert.Equal(t, p, m.ElementPartition[e])
		}
		next = r[1]
	}
	// Morton quadrants of an 8x8 periodic grid, cut along x=0.5, y=0.5 and the
	// periodic seams
	assert.Equal(t, 32, m.CutFaces())
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
