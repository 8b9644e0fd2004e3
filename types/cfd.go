package types

import (
	"fmt"
	"strings"
)

//go:generate stringer -type=BCFLAG

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_Periodic
	BC_Dirichlet
	BC_Wall
	BC_Out
)

var BCNameMap = map[string]BCFLAG{
	"periodic":  BC_Periodic,
	"dirichlet": BC_Dirichlet,
	"wall":      BC_Wall,
	"slip":      BC_Wall,
	"out":       BC_Out,
	"outflow":   BC_Out,
}

func NewBCFLAG(name string) (bf BCFLAG, err error) {
	var ok bool
	if bf, ok = BCNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown boundary condition type %q", name)
	}
	return
}

// FaceNames label the faces of a Cartesian element, and the boundaries of a
// Cartesian domain, by outward direction. Face f has orientation f/2 and
// lies on the plus side of that coordinate when f is odd.
var FaceNames = [6]string{"x_neg", "x_pos", "y_neg", "y_pos", "z_neg", "z_pos"}

func FaceByName(name string) (face int, err error) {
	for f, fn := range FaceNames {
		if strings.EqualFold(fn, name) {
			return f, nil
		}
	}
	return -1, fmt.Errorf("unknown face name %q", name)
}
