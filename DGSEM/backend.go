package DGSEM

import (
	"fmt"

	"github.com/notargets/treedg/device"
)

// Backend executes the stages of a Semidiscretization in its own memory
// space. Launch may return before the stage completes, Finish waits for every
// launched stage. Snapshot and Fetch are only valid after Finish.
type Backend interface {
	Name() string
	// Bind makes du, u and the blending coefficients the arrays of the
	// following stages, transferring u and alpha to the backend
	Bind(du, u, alpha []float64) error
	Launch(stage Stage, t float64) error
	Finish() error
	// Fetch copies the residual into du
	Fetch(du []float64) error
	// Snapshot returns a host copy of a buffer
	Snapshot(id BufferID) ([]float64, error)
	Free()
}

// hostBackend binds caller arrays in place, host backends write the residual
// directly into the du given to Bind.
type hostBackend struct {
	sd  *Semidiscretization
	buf *Buffers
}

func newHostBackend(sd *Semidiscretization) hostBackend {
	return hostBackend{sd: sd, buf: NewBuffers(sd.Tables, sd.nvars)}
}

func (hb *hostBackend) Bind(du, u, alpha []float64) error {
	hb.buf.DU, hb.buf.U, hb.buf.Alpha = du, u, alpha
	return nil
}

func (hb *hostBackend) bound() error {
	if hb.buf.U == nil || hb.buf.DU == nil {
		return fmt.Errorf("%w: stage launched before Bind", ErrConfig)
	}
	return nil
}

func (hb *hostBackend) Fetch(du []float64) error {
	if len(du) != len(hb.buf.DU) {
		return fmt.Errorf("%w: du has %d entries, expected %d", ErrShape, len(du), len(hb.buf.DU))
	}
	copy(du, hb.buf.DU)
	return nil
}

func (hb *hostBackend) Snapshot(id BufferID) (a []float64, err error) {
	src := hb.buf.Get(id)
	if src == nil && hb.buf.Len(id) > 0 {
		return nil, fmt.Errorf("%w: buffer %s is not bound", ErrConfig, id)
	}
	return append([]float64{}, src...), nil
}

func (hb *hostBackend) Finish() error { return nil }

func (hb *hostBackend) Free() {
	hb.buf.U, hb.buf.DU, hb.buf.Alpha = nil, nil, nil
}

// Buffers exposes the staging arrays, for tests and benchmarks.
func (hb *hostBackend) Buffers() *Buffers { return hb.buf }

// Reference runs the sequential reference stages.
type Reference struct {
	hostBackend
}

func NewReference(sd *Semidiscretization) *Reference {
	return &Reference{hostBackend: newHostBackend(sd)}
}

func (r *Reference) Name() string { return "reference" }

func (r *Reference) Launch(stage Stage, t float64) error {
	if err := r.bound(); err != nil {
		return err
	}
	var (
		sd = r.sd
		b  = r.buf
	)
	switch stage {
	case StageReset:
		Reset(b)
	case StageVolumeIntegral:
		CalcVolumeIntegral(b, sd.Equation, sd.VolumeIntegral)
	case StageProlongInterfaces:
		ProlongToInterfaces(b)
	case StageInterfaceFlux:
		CalcInterfaceFlux(b, sd.Equation)
	case StageProlongBoundaries:
		ProlongToBoundaries(b)
	case StageBoundaryFlux:
		CalcBoundaryFlux(b, sd.Equation, sd.BoundaryConditions, t)
	case StageProlongMortars:
		ProlongToMortars(b)
	case StageMortarFlux:
		CalcMortarFlux(b, sd.Equation)
	case StageSurfaceIntegral:
		CalcSurfaceIntegral(b)
	case StageJacobian:
		ApplyJacobian(b)
	case StageSources:
		CalcSources(b, sd.Sources, t)
	default:
		return fmt.Errorf("%w: unknown stage %d", ErrConfig, stage)
	}
	return nil
}

// Parallel runs every stage as work-item kernels on a host device, one
// work-item per element node or face node.
type Parallel struct {
	hostBackend
	dev device.Device
}

func NewParallel(sd *Semidiscretization, dev device.Device) *Parallel {
	return &Parallel{hostBackend: newHostBackend(sd), dev: dev}
}

func (p *Parallel) Name() string { return "parallel " + p.dev.Mode() }

func (p *Parallel) Finish() error {
	p.dev.Finish()
	return nil
}
