package treemesh

import (
	"sort"

	"github.com/notargets/treedg/types"
)

// tree is the cell hierarchy of a Cartesian domain. Every cell is either a
// leaf or internal, internal cells have all 2^ndims children present.
type tree struct {
	ndims    int
	periodic [3]bool
	leaves   map[types.CellKey]bool
	internal map[types.CellKey]bool
}

func newTree(ndims, level int, periodic [3]bool) (tr *tree) {
	tr = &tree{
		ndims:    ndims,
		periodic: periodic,
		leaves:   map[types.CellKey]bool{types.NewCellKey(0, [3]int{}): true},
		internal: make(map[types.CellKey]bool),
	}
	for l := 0; l < level; l++ {
		for _, key := range tr.sortedLeaves() {
			tr.refine(key)
		}
	}
	return
}

func (tr *tree) refine(key types.CellKey) {
	var (
		level = key.GetLevel()
		c     = key.GetCoords()
	)
	delete(tr.leaves, key)
	tr.internal[key] = true
	for child := 0; child < 1<<tr.ndims; child++ {
		var cc [3]int
		for d := 0; d < tr.ndims; d++ {
			cc[d] = 2*c[d] + (child>>d)&1
		}
		tr.leaves[types.NewCellKey(level+1, cc)] = true
	}
}

// neighbor returns the same-level cell across face (dir, side) of key,
// wrapping periodic directions. ok is false on a domain boundary.
func (tr *tree) neighbor(key types.CellKey, dir, side int) (nb types.CellKey, ok bool) {
	var (
		level = key.GetLevel()
		c     = key.GetCoords()
		n     = 1 << level
	)
	c[dir] += 2*side - 1
	if c[dir] < 0 || c[dir] >= n {
		if !tr.periodic[dir] {
			return
		}
		c[dir] = (c[dir] + n) % n
	}
	return types.NewCellKey(level, c), true
}

// faceChildren lists the children of key touching its face (dir, side),
// ordered by their half positions along the tangential directions.
func (tr *tree) faceChildren(key types.CellKey, dir, side int) (children []types.CellKey) {
	var (
		level = key.GetLevel()
		c     = key.GetCoords()
		tdims = TangentialDims(tr.ndims, dir)
	)
	children = make([]types.CellKey, 1<<len(tdims))
	for s := range children {
		var cc [3]int
		for d := 0; d < tr.ndims; d++ {
			cc[d] = 2 * c[d]
		}
		cc[dir] += side
		for t, td := range tdims {
			cc[td] += (s >> t) & 1
		}
		children[s] = types.NewCellKey(level+1, cc)
	}
	return
}

// coveringLeaf finds the leaf at a coarser level than key that contains it.
func (tr *tree) coveringLeaf(key types.CellKey) (leaf types.CellKey, ok bool) {
	var (
		level = key.GetLevel()
		c     = key.GetCoords()
	)
	for l := level - 1; l >= 0; l-- {
		shift := level - l
		leaf = types.NewCellKey(l, [3]int{c[0] >> shift, c[1] >> shift, c[2] >> shift})
		if tr.leaves[leaf] {
			return leaf, true
		}
	}
	return
}

// balance refines leaves until face neighbors differ by at most one level.
func (tr *tree) balance() {
	for {
		var changed bool
		for _, key := range tr.sortedLeaves() {
			if !tr.leaves[key] {
				continue
			}
			for dir := 0; dir < tr.ndims; dir++ {
				for side := 0; side < 2; side++ {
					nb, ok := tr.neighbor(key, dir, side)
					if !ok {
						continue
					}
					coarse, found := tr.coveringLeaf(nb)
					if found && coarse.GetLevel() < key.GetLevel()-1 {
						tr.refine(coarse)
						changed = true
					}
				}
			}
		}
		if !changed {
			return
		}
	}
}

func (tr *tree) sortedLeaves() (keys []types.CellKey) {
	keys = make([]types.CellKey, 0, len(tr.leaves))
	for key := range tr.leaves {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return
}

// mortonOrder sorts leaves along the Z curve through their lower corners.
func (tr *tree) mortonOrder() (keys []types.CellKey) {
	var maxLevel int
	for key := range tr.leaves {
		maxLevel = max(maxLevel, key.GetLevel())
	}
	morton := func(key types.CellKey) (m uint64) {
		var (
			c     = key.GetCoords()
			shift = maxLevel - key.GetLevel()
		)
		for b := 0; b < maxLevel; b++ {
			for d := 0; d < tr.ndims; d++ {
				m |= uint64((c[d]<<shift)>>b&1) << (b*tr.ndims + d)
			}
		}
		return
	}
	keys = tr.sortedLeaves()
	mk := make(map[types.CellKey]uint64, len(keys))
	for _, key := range keys {
		mk[key] = morton(key)
	}
	sort.SliceStable(keys, func(i, j int) bool { return mk[keys[i]] < mk[keys[j]] })
	return
}

// TangentialDims lists the coordinate directions other than dir in
// increasing order, the ordering used for face nodes and mortar subfaces.
func TangentialDims(ndims, dir int) (tdims []int) {
	for d := 0; d < ndims; d++ {
		if d != dir {
			tdims = append(tdims, d)
		}
	}
	return
}
