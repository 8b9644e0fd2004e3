//go:build occa

package occa

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
	"github.com/notargets/treedg/DGSEM"
)

// Backend runs every stage as an OKL kernel on an OCCA device. Boundary
// closures and source terms are Go functions, they are evaluated on the host
// and their results transferred to the device.
type Backend struct {
	sd      *DGSEM.Semidiscretization
	device  *gocca.OCCADevice
	kernels map[string]*gocca.OCCAKernel
	memory  map[string]*gocca.OCCAMemory
	host    *DGSEM.Buffers // host staging for the boundary closures
	nitems  map[string]int64
	// Host side results of the closures
	exterior, sources []float64
	bound             bool
	source            string
}

// NewBackend compiles the program of sd on a device created from props, for
// example {"mode": "Serial"} or {"mode": "CUDA", "device_id": 0}.
func NewBackend(sd *DGSEM.Semidiscretization, props string) (DGSEM.Backend, error) {
	eq, ok := sd.Equation.(DeviceEquation)
	if !ok {
		return nil, fmt.Errorf("%w: equation %T has no device source", DGSEM.ErrConfig, sd.Equation)
	}
	device, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", DGSEM.ErrBackend, err)
	}
	var (
		tb = sd.Tables
		nv = sd.NVariables()
		nI = int64(len(tb.Interfaces) * tb.Nfp)
		nB = int64(len(tb.Boundaries) * tb.Nfp)
		nM = int64(len(tb.Mortars) * tb.NSub * tb.Nfp)
		nK = int64(tb.K * tb.Np)
	)
	b := &Backend{
		sd:       sd,
		device:   device,
		kernels:  make(map[string]*gocca.OCCAKernel),
		memory:   make(map[string]*gocca.OCCAMemory),
		host:     DGSEM.NewBuffers(tb, nv),
		exterior: make([]float64, nB*int64(nv)),
		sources:  make([]float64, nK*int64(nv)),
		source:   GenerateSource(tb, eq, sd.VolumeIntegral),
		nitems: map[string]int64{
			"reset":              nK * int64(nv),
			"volume_integral":    nK,
			"prolong2interfaces": nI,
			"interface_flux":     nI,
			"prolong2boundaries": nB,
			"boundary_flux":      nB,
			"prolong2mortars":    nM,
			"mortar_flux":        nM,
			"mortar_projection":  int64(len(tb.Mortars) * tb.Nfp),
			"surface_integral":   nK,
			"jacobian":           nK,
			"add_sources":        nK * int64(nv),
		},
	}
	for _, name := range KernelNames {
		if b.kernels[name], err = device.BuildKernelFromString(b.source, name, nil); err != nil {
			b.Free()
			return nil, fmt.Errorf("%w: failed to build kernel %s: %v", DGSEM.ErrBackend, name, err)
		}
	}
	for _, id := range []DGSEM.BufferID{DGSEM.BufferU, DGSEM.BufferDU, DGSEM.BufferInterfaceU,
		DGSEM.BufferBoundaryU, DGSEM.BufferMortarU, DGSEM.BufferMortarFlux, DGSEM.BufferSurfaceFlux,
		DGSEM.BufferAlpha} {
		b.memory[id.String()] = b.mallocReal(make([]float64, b.host.Len(id)))
	}
	b.memory["exterior"] = b.mallocReal(b.exterior)
	b.memory["sources"] = b.mallocReal(b.sources)
	b.memory["inverse_jacobian"] = b.mallocReal(tb.InverseJacobian)
	b.memory["interfaces"], b.memory["boundaries"], b.memory["mortars"] = b.uploadTopology()
	return b, nil
}

// mallocReal allocates device memory initialized from a, at least one entry
// long.
func (b *Backend) mallocReal(a []float64) *gocca.OCCAMemory {
	if len(a) == 0 {
		a = []float64{0}
	}
	return b.device.Malloc(int64(len(a)*8), unsafe.Pointer(&a[0]), nil)
}

func (b *Backend) mallocInt(a []int64) *gocca.OCCAMemory {
	if len(a) == 0 {
		a = []int64{0}
	}
	return b.device.Malloc(int64(len(a)*8), unsafe.Pointer(&a[0]), nil)
}

func (b *Backend) uploadTopology() (interfaces, boundaries, mortars *gocca.OCCAMemory) {
	tb := b.sd.Tables
	ifc := make([]int64, 0, 3*len(tb.Interfaces))
	for _, f := range tb.Interfaces {
		ifc = append(ifc, int64(f.Left), int64(f.Right), int64(f.Orientation))
	}
	bnd := make([]int64, 0, 4*len(tb.Boundaries))
	for _, bd := range tb.Boundaries {
		bnd = append(bnd, int64(bd.Element), int64(bd.Orientation), int64(bd.Side), int64(bd.Face))
	}
	mrt := make([]int64, 0, 7*len(tb.Mortars))
	for _, mo := range tb.Mortars {
		mrt = append(mrt, int64(mo.Large), int64(mo.Small[0]), int64(mo.Small[1]), int64(mo.Small[2]),
			int64(mo.Small[3]), int64(mo.Orientation), int64(mo.LargeSide))
	}
	return b.mallocInt(ifc), b.mallocInt(bnd), b.mallocInt(mrt)
}

func (b *Backend) Name() string { return "occa " + b.device.Mode() }

// Source returns the generated OKL program.
func (b *Backend) Source() string { return b.source }

func (b *Backend) Bind(du, u, alpha []float64) error {
	if len(u) != b.host.Len(DGSEM.BufferU) || len(du) != len(u) {
		return fmt.Errorf("%w: u has %d entries, du %d, expected %d", DGSEM.ErrShape,
			len(u), len(du), b.host.Len(DGSEM.BufferU))
	}
	b.host.U = u
	b.copyFrom(DGSEM.BufferU.String(), u)
	if alpha != nil {
		b.copyFrom(DGSEM.BufferAlpha.String(), alpha)
	}
	b.bound = true
	return nil
}

func (b *Backend) copyFrom(name string, a []float64) {
	if len(a) > 0 {
		b.memory[name].CopyFrom(unsafe.Pointer(&a[0]), int64(len(a)*8))
	}
}

func (b *Backend) copyTo(name string, a []float64) {
	if len(a) > 0 {
		b.memory[name].CopyTo(unsafe.Pointer(&a[0]), int64(len(a)*8))
	}
}

func (b *Backend) run(name string, args ...interface{}) error {
	n := b.nitems[name]
	if n == 0 {
		return nil
	}
	if err := b.kernels[name].RunWithArgs(append([]interface{}{n}, args...)...); err != nil {
		return fmt.Errorf("%w: kernel %s: %v", DGSEM.ErrBackend, name, err)
	}
	return nil
}

func (b *Backend) Launch(stage DGSEM.Stage, t float64) error {
	if !b.bound {
		return fmt.Errorf("%w: stage launched before Bind", DGSEM.ErrConfig)
	}
	var (
		mem  = b.memory
		u    = mem[DGSEM.BufferU.String()]
		du   = mem[DGSEM.BufferDU.String()]
		sf   = mem[DGSEM.BufferSurfaceFlux.String()]
		ifU  = mem[DGSEM.BufferInterfaceU.String()]
		bndU = mem[DGSEM.BufferBoundaryU.String()]
		mU   = mem[DGSEM.BufferMortarU.String()]
		mF   = mem[DGSEM.BufferMortarFlux.String()]
	)
	switch stage {
	case DGSEM.StageReset:
		return b.run("reset", du)
	case DGSEM.StageVolumeIntegral:
		return b.run("volume_integral", u, mem[DGSEM.BufferAlpha.String()], du)
	case DGSEM.StageProlongInterfaces:
		return b.run("prolong2interfaces", mem["interfaces"], u, ifU)
	case DGSEM.StageInterfaceFlux:
		return b.run("interface_flux", mem["interfaces"], ifU, sf)
	case DGSEM.StageProlongBoundaries:
		return b.run("prolong2boundaries", mem["boundaries"], u, bndU)
	case DGSEM.StageBoundaryFlux:
		if b.nitems["boundary_flux"] == 0 {
			return nil
		}
		b.device.Finish()
		b.exteriorStates(t)
		b.copyFrom("exterior", b.exterior)
		return b.run("boundary_flux", mem["boundaries"], bndU, mem["exterior"], sf)
	case DGSEM.StageProlongMortars:
		return b.run("prolong2mortars", mem["mortars"], u, mU)
	case DGSEM.StageMortarFlux:
		if err := b.run("mortar_flux", mem["mortars"], mU, mF, sf); err != nil {
			return err
		}
		b.device.Finish()
		return b.run("mortar_projection", mem["mortars"], mF, sf)
	case DGSEM.StageSurfaceIntegral:
		return b.run("surface_integral", sf, du)
	case DGSEM.StageJacobian:
		return b.run("jacobian", mem["inverse_jacobian"], du)
	case DGSEM.StageSources:
		if b.sd.Sources == nil {
			return nil
		}
		b.sourceTerms(t)
		b.copyFrom("sources", b.sources)
		return b.run("add_sources", mem["sources"], du)
	}
	return fmt.Errorf("%w: unknown stage %d", DGSEM.ErrConfig, stage)
}

// exteriorStates evaluates the boundary closures on the host from the
// device's boundary traces.
func (b *Backend) exteriorStates(t float64) {
	var (
		tb = b.sd.Tables
		h  = b.host
		nv = h.NVars
	)
	b.copyTo(DGSEM.BufferBoundaryU.String(), h.BoundaryU)
	for i, bnd := range tb.Boundaries {
		bc := b.sd.BoundaryConditions[bnd.Tag]
		for j := 0; j < tb.Nfp; j++ {
			o := (i*tb.Nfp + j) * nv
			bc.ExteriorState(h.BoundaryNode(i, j), bnd.Face, tb.NodeX(bnd.Element, tb.FaceNodes[bnd.Face][j]), t,
				b.exterior[o:o+nv])
		}
	}
}

// sourceTerms evaluates the sources on the host from the bound solution.
func (b *Backend) sourceTerms(t float64) {
	var (
		tb = b.sd.Tables
		h  = b.host
	)
	for e := 0; e < tb.K; e++ {
		for node := 0; node < tb.Np; node++ {
			b.sd.Sources.Source(h.Node(h.U, e, node), tb.NodeX(e, node), t, h.Node(b.sources, e, node))
		}
	}
}

func (b *Backend) Finish() error {
	b.device.Finish()
	return nil
}

func (b *Backend) Fetch(du []float64) error {
	if len(du) != b.host.Len(DGSEM.BufferDU) {
		return fmt.Errorf("%w: du has %d entries, expected %d", DGSEM.ErrShape, len(du), b.host.Len(DGSEM.BufferDU))
	}
	b.copyTo(DGSEM.BufferDU.String(), du)
	return nil
}

func (b *Backend) Snapshot(id DGSEM.BufferID) ([]float64, error) {
	mem, ok := b.memory[id.String()]
	if !ok || mem == nil {
		return nil, fmt.Errorf("%w: unknown buffer %s", DGSEM.ErrConfig, id)
	}
	a := make([]float64, b.host.Len(id))
	b.copyTo(id.String(), a)
	return a, nil
}

func (b *Backend) Free() {
	for _, kernel := range b.kernels {
		if kernel != nil {
			kernel.Free()
		}
	}
	for _, mem := range b.memory {
		if mem != nil {
			mem.Free()
		}
	}
	b.kernels, b.memory = nil, nil
	b.device.Free()
}
