package DGSEM

import "fmt"

type BufferID uint8

const (
	BufferU BufferID = iota
	BufferDU
	BufferInterfaceU
	BufferBoundaryU
	BufferMortarU
	BufferMortarFlux
	BufferSurfaceFlux
	BufferAlpha
)

var bufferNames = [...]string{"u", "du", "interface_u", "boundary_u", "mortar_u", "mortar_flux",
	"surface_flux_values", "alpha"}

func (id BufferID) String() string {
	if int(id) < len(bufferNames) {
		return bufferNames[id]
	}
	return fmt.Sprintf("BufferID(%d)", id)
}

// Buffers are the state and staging arrays of one evaluation. U, DU and
// Alpha are bound to caller storage, the staging arrays are allocated once
// and fully overwritten by every evaluation.
type Buffers struct {
	NVars int
	U, DU []float64 // [K][Np][NVars]
	// InterfaceU is [2][NInterfaces][Nfp][NVars], side 0 is the left element
	InterfaceU []float64
	BoundaryU  []float64 // [NBoundaries][Nfp][NVars]
	// MortarU is [2][NMortars][NSub][Nfp][NVars], side 0 is the minus side of
	// the mortar. MortarFlux has the same layout and holds the subface flux as
	// seen from each side.
	MortarU, MortarFlux []float64
	SurfaceFlux         []float64 // [K][NFaces][Nfp][NVars]
	Alpha               []float64 // [K]
	tb                  *Tables
}

func NewBuffers(tb *Tables, nvars int) (b *Buffers) {
	var (
		nI = len(tb.Interfaces)
		nB = len(tb.Boundaries)
		nM = len(tb.Mortars)
	)
	b = &Buffers{
		NVars:       nvars,
		InterfaceU:  make([]float64, 2*nI*tb.Nfp*nvars),
		BoundaryU:   make([]float64, nB*tb.Nfp*nvars),
		MortarU:     make([]float64, 2*nM*tb.NSub*tb.Nfp*nvars),
		MortarFlux:  make([]float64, 2*nM*tb.NSub*tb.Nfp*nvars),
		SurfaceFlux: make([]float64, tb.K*tb.NFaces*tb.Nfp*nvars),
		tb:          tb,
	}
	return
}

// Len is the number of entries of a buffer.
func (b *Buffers) Len(id BufferID) int {
	tb := b.tb
	switch id {
	case BufferU, BufferDU:
		return tb.K * tb.Np * b.NVars
	case BufferInterfaceU:
		return len(b.InterfaceU)
	case BufferBoundaryU:
		return len(b.BoundaryU)
	case BufferMortarU:
		return len(b.MortarU)
	case BufferMortarFlux:
		return len(b.MortarFlux)
	case BufferSurfaceFlux:
		return len(b.SurfaceFlux)
	case BufferAlpha:
		return tb.K
	}
	return 0
}

func (b *Buffers) Get(id BufferID) []float64 {
	switch id {
	case BufferU:
		return b.U
	case BufferDU:
		return b.DU
	case BufferInterfaceU:
		return b.InterfaceU
	case BufferBoundaryU:
		return b.BoundaryU
	case BufferMortarU:
		return b.MortarU
	case BufferMortarFlux:
		return b.MortarFlux
	case BufferSurfaceFlux:
		return b.SurfaceFlux
	case BufferAlpha:
		return b.Alpha
	}
	return nil
}

// Node returns the variables of a volume node.
func (b *Buffers) Node(a []float64, e, node int) []float64 {
	o := (e*b.tb.Np + node) * b.NVars
	return a[o : o+b.NVars : o+b.NVars]
}

func (b *Buffers) InterfaceNode(side, i, j int) []float64 {
	o := ((side*len(b.tb.Interfaces)+i)*b.tb.Nfp + j) * b.NVars
	return b.InterfaceU[o : o+b.NVars : o+b.NVars]
}

func (b *Buffers) BoundaryNode(i, j int) []float64 {
	o := (i*b.tb.Nfp + j) * b.NVars
	return b.BoundaryU[o : o+b.NVars : o+b.NVars]
}

// MortarNode indexes MortarU or MortarFlux.
func (b *Buffers) MortarNode(a []float64, side, m, s, j int) []float64 {
	o := (((side*len(b.tb.Mortars)+m)*b.tb.NSub+s)*b.tb.Nfp + j) * b.NVars
	return a[o : o+b.NVars : o+b.NVars]
}

func (b *Buffers) FaceNode(e, f, j int) []float64 {
	o := ((e*b.tb.NFaces+f)*b.tb.Nfp + j) * b.NVars
	return b.SurfaceFlux[o : o+b.NVars : o+b.NVars]
}
