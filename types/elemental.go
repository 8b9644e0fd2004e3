package types

import (
	"fmt"
)

const (
	cellLevelBits = 6
	cellCoordBits = 19
	// MaxCellLevel is the deepest refinement level a CellKey can address
	MaxCellLevel = cellCoordBits
)

/*
CellKey packs the address of a tree cell, its refinement level and integer
coordinates at that level, into one comparable value for use as a map key.
Coordinates of unused dimensions are zero.
*/
type CellKey uint64

func NewCellKey(level int, coords [3]int) (packed CellKey) {
	var (
		limit = 1<<cellCoordBits - 1
	)
	if level < 0 || level > MaxCellLevel {
		panic(fmt.Errorf("cell level %d out of range [0,%d]", level, MaxCellLevel))
	}
	packed = CellKey(level)
	for d, c := range coords {
		if c < 0 || c > limit {
			panic(fmt.Errorf("unable to pack cell coordinates %v at level %d", coords, level))
		}
		packed |= CellKey(c) << (cellLevelBits + d*cellCoordBits)
	}
	return
}

func (ck CellKey) GetLevel() int {
	return int(ck & (1<<cellLevelBits - 1))
}

func (ck CellKey) GetCoords() (coords [3]int) {
	mask := CellKey(1<<cellCoordBits - 1)
	for d := range coords {
		coords[d] = int((ck >> (cellLevelBits + d*cellCoordBits)) & mask)
	}
	return
}

// Parent returns the key of the cell one level coarser containing this one.
func (ck CellKey) Parent() CellKey {
	level, c := ck.GetLevel(), ck.GetCoords()
	if level == 0 {
		panic("root cell has no parent")
	}
	return NewCellKey(level-1, [3]int{c[0] >> 1, c[1] >> 1, c[2] >> 1})
}

func (ck CellKey) String() string {
	c := ck.GetCoords()
	return fmt.Sprintf("L%d(%d,%d,%d)", ck.GetLevel(), c[0], c[1], c[2])
}
