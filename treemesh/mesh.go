package treemesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/treedg/types"
	"github.com/notargets/treedg/utils"
)

// ErrTopology reports a face that is not owned by exactly one coupling.
var ErrTopology = errors.New("topology coverage violation")

type RefineBox struct {
	Lo, Hi [3]float64
	Level  int // Leaves with centers inside the box are refined to this level
}

type Config struct {
	NDims        int
	Lo, Hi       [3]float64
	InitialLevel int
	Refine       []RefineBox
	Periodic     [3]bool
	// Elements are renumbered partition contiguous when Partitions > 1
	Partitions  int
	Partitioner Partitioner
}

type Element struct {
	Key    types.CellKey
	Level  int
	Lo     [3]float64 // Lower corner
	Length float64
}

// Interface couples the plus face of Left with the minus face of Right along
// Orientation.
type Interface struct {
	Left, Right int
	Orientation int
}

// Boundary is a face with no neighbor, Face is the outward direction
// 2*Orientation+Side and Tag selects the boundary condition.
type Boundary struct {
	Element     int
	Orientation int
	Side        int
	Face        int
	Tag         int
}

// Mortar couples the face of Large to the faces of the 2^(NDims-1) Small
// elements of the next level. LargeSide is 0 when Large is on the minus side
// of the mortar. Small elements are ordered by their half positions along
// the tangential directions, index a + 2b.
type Mortar struct {
	Large       int
	Small       [4]int
	Orientation int
	LargeSide   int
}

type Mesh struct {
	Dim          int
	Lo           [3]float64
	DomainLength float64
	Periodic     [3]bool
	Elements     []Element
	Interfaces   []Interface
	Boundaries   []Boundary
	Mortars      []Mortar
	// Partition of each element, nil if the mesh was not partitioned
	ElementPartition []int
	NPartitions      int
	index            map[types.CellKey]int
	tr               *tree
}

func New(cfg Config) (m *Mesh, err error) {
	if cfg.NDims < 1 || cfg.NDims > 3 {
		return nil, fmt.Errorf("dimension must be 1, 2 or 3, have %d", cfg.NDims)
	}
	length := cfg.Hi[0] - cfg.Lo[0]
	if length <= 0 {
		return nil, fmt.Errorf("empty domain [%v,%v]", cfg.Lo[0], cfg.Hi[0])
	}
	for d := 1; d < cfg.NDims; d++ {
		if math.Abs(cfg.Hi[d]-cfg.Lo[d]-length) > utils.NODETOL*length {
			return nil, fmt.Errorf("tree mesh domain must be a cube, extents %v and %v differ",
				length, cfg.Hi[d]-cfg.Lo[d])
		}
	}
	maxLevel := cfg.InitialLevel
	for _, rb := range cfg.Refine {
		maxLevel = max(maxLevel, rb.Level)
	}
	if cfg.InitialLevel < 0 || maxLevel > types.MaxCellLevel {
		return nil, fmt.Errorf("refinement levels must be in [0,%d]", types.MaxCellLevel)
	}
	m = &Mesh{
		Dim:          cfg.NDims,
		Lo:           cfg.Lo,
		DomainLength: length,
		Periodic:     cfg.Periodic,
	}
	m.tr = newTree(cfg.NDims, cfg.InitialLevel, cfg.Periodic)
	for _, rb := range cfg.Refine {
		m.refineBox(rb)
	}
	m.tr.balance()
	m.setElements(m.tr.mortonOrder())
	if err = m.buildCatalogs(); err != nil {
		return nil, err
	}
	if cfg.Partitions > 1 {
		if err = m.partition(cfg.Partitions, cfg.Partitioner); err != nil {
			return nil, err
		}
	}
	if err = m.Validate(); err != nil {
		return nil, err
	}
	return
}

func (m *Mesh) refineBox(rb RefineBox) {
	for {
		var changed bool
		for _, key := range m.tr.sortedLeaves() {
			if key.GetLevel() >= rb.Level {
				continue
			}
			center := m.cellCenter(key)
			inside := true
			for d := 0; d < m.Dim; d++ {
				if center[d] < rb.Lo[d] || center[d] > rb.Hi[d] {
					inside = false
				}
			}
			if inside {
				m.tr.refine(key)
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (m *Mesh) cellCenter(key types.CellKey) (x [3]float64) {
	var (
		h = m.DomainLength / float64(int(1)<<key.GetLevel())
		c = key.GetCoords()
	)
	for d := 0; d < m.Dim; d++ {
		x[d] = m.Lo[d] + (float64(c[d])+0.5)*h
	}
	return
}

func (m *Mesh) setElements(keys []types.CellKey) {
	m.Elements = make([]Element, len(keys))
	m.index = make(map[types.CellKey]int, len(keys))
	for e, key := range keys {
		var (
			h  = m.DomainLength / float64(int(1)<<key.GetLevel())
			c  = key.GetCoords()
			lo [3]float64
		)
		for d := 0; d < m.Dim; d++ {
			lo[d] = m.Lo[d] + float64(c[d])*h
		}
		m.Elements[e] = Element{Key: key, Level: key.GetLevel(), Lo: lo, Length: h}
		m.index[key] = e
	}
}

func (m *Mesh) buildCatalogs() (err error) {
	m.Interfaces, m.Boundaries, m.Mortars = nil, nil, nil
	for e, el := range m.Elements {
		for dir := 0; dir < m.Dim; dir++ {
			for side := 0; side < 2; side++ {
				nb, ok := m.tr.neighbor(el.Key, dir, side)
				switch {
				case !ok:
					face := 2*dir + side
					m.Boundaries = append(m.Boundaries, Boundary{
						Element: e, Orientation: dir, Side: side, Face: face, Tag: face,
					})
				case m.tr.leaves[nb]:
					if side == 1 {
						m.Interfaces = append(m.Interfaces, Interface{Left: e, Right: m.index[nb], Orientation: dir})
					}
				case m.tr.internal[nb]:
					children := m.tr.faceChildren(nb, dir, 1-side)
					small := make([]int, len(children))
					for s, child := range children {
						var found bool
						if small[s], found = m.index[child]; !found {
							return fmt.Errorf("%w: element %v has a neighbor more than one level finer",
								ErrTopology, el.Key)
						}
					}
					if m.Dim == 1 {
						// Faces are points, a level change needs no mortar
						if side == 1 {
							m.Interfaces = append(m.Interfaces, Interface{Left: e, Right: small[0], Orientation: dir})
						} else {
							m.Interfaces = append(m.Interfaces, Interface{Left: small[0], Right: e, Orientation: dir})
						}
						continue
					}
					mortar := Mortar{Large: e, Orientation: dir, LargeSide: 1 - side}
					copy(mortar.Small[:], small)
					m.Mortars = append(m.Mortars, mortar)
				}
				// Otherwise the neighbor is inside a coarser leaf, which owns the face
			}
		}
	}
	return
}

// Validate checks that every element face is owned by exactly one catalog
// entry.
func (m *Mesh) Validate() error {
	return CheckCoverage(m.Dim, len(m.Elements), m.Interfaces, m.Boundaries, m.Mortars)
}

// CheckCoverage counts the catalog entries touching each element face and
// fails unless every face is covered exactly once.
func CheckCoverage(ndims, nelements int, interfaces []Interface, boundaries []Boundary,
	mortars []Mortar) error {
	var (
		nfaces = 2 * ndims
		count  = make([]int, nelements*nfaces)
	)
	mark := func(e, face int) error {
		if e < 0 || e >= nelements || face < 0 || face >= nfaces {
			return fmt.Errorf("%w: element %d face %d out of range", ErrTopology, e, face)
		}
		count[e*nfaces+face]++
		return nil
	}
	for i, f := range interfaces {
		if err := errors.Join(mark(f.Left, 2*f.Orientation+1), mark(f.Right, 2*f.Orientation)); err != nil {
			return fmt.Errorf("interface %d: %w", i, err)
		}
	}
	for i, b := range boundaries {
		if b.Face != 2*b.Orientation+b.Side {
			return fmt.Errorf("%w: boundary %d face %d inconsistent with orientation %d side %d",
				ErrTopology, i, b.Face, b.Orientation, b.Side)
		}
		if err := mark(b.Element, b.Face); err != nil {
			return fmt.Errorf("boundary %d: %w", i, err)
		}
	}
	nsub := 1 << (ndims - 1)
	for i, mo := range mortars {
		largeFace := 2*mo.Orientation + 1 - mo.LargeSide
		smallFace := 2*mo.Orientation + mo.LargeSide
		if err := mark(mo.Large, largeFace); err != nil {
			return fmt.Errorf("mortar %d: %w", i, err)
		}
		for s := 0; s < nsub; s++ {
			if err := mark(mo.Small[s], smallFace); err != nil {
				return fmt.Errorf("mortar %d: %w", i, err)
			}
		}
	}
	for i, c := range count {
		if c != 1 {
			return fmt.Errorf("%w: element %d face %s covered %d times",
				ErrTopology, i/nfaces, types.FaceNames[i%nfaces], c)
		}
	}
	return nil
}

func (m *Mesh) Dimensions() int  { return m.Dim }
func (m *Mesh) NumElements() int { return len(m.Elements) }

// ElementGeometry returns the lower corner and edge length of element e.
func (m *Mesh) ElementGeometry(e int) (lo [3]float64, length float64) {
	return m.Elements[e].Lo, m.Elements[e].Length
}

func (m *Mesh) InterfaceCatalog() []Interface { return m.Interfaces }
func (m *Mesh) BoundaryCatalog() []Boundary   { return m.Boundaries }
func (m *Mesh) MortarCatalog() []Mortar       { return m.Mortars }

// ElementIndex looks up the element of a leaf cell.
func (m *Mesh) ElementIndex(key types.CellKey) (e int, ok bool) {
	e, ok = m.index[key]
	return
}

func (m *Mesh) String() string {
	minL, maxL := types.MaxCellLevel, 0
	for _, el := range m.Elements {
		minL, maxL = min(minL, el.Level), max(maxL, el.Level)
	}
	return fmt.Sprintf("%dD tree mesh: %d elements (levels %d-%d), %d interfaces, %d boundaries, %d mortars",
		m.Dim, len(m.Elements), minL, maxL, len(m.Interfaces), len(m.Boundaries), len(m.Mortars))
}
