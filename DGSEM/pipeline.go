package DGSEM

import (
	"fmt"
	"log"

	"github.com/notargets/treedg/utils"
)

type Stage uint8

const (
	StageReset Stage = iota
	StageVolumeIntegral
	StageProlongInterfaces
	StageInterfaceFlux
	StageProlongBoundaries
	StageBoundaryFlux
	StageProlongMortars
	StageMortarFlux
	StageSurfaceIntegral
	StageJacobian
	StageSources
	NumStages
)

var stageNames = [NumStages]string{"reset", "volume_integral", "prolong2interfaces", "interface_flux",
	"prolong2boundaries", "boundary_flux", "prolong2mortars", "mortar_flux", "surface_integral",
	"jacobian", "sources"}

func (s Stage) String() string {
	if s < NumStages {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", s)
}

// Semidiscretization evaluates the residual of an equation on a mesh. The
// tables and configuration are fixed at construction, the backend owns the
// buffers the stages relay through.
type Semidiscretization struct {
	Tables   *Tables
	Equation Equation
	Config
	nvars   int
	alpha   []float64
	backend Backend
	// Set once a debug check has reported the evaluation
	reported bool
}

func NewSemidiscretization(mesh MeshProvider, eq Equation, cfg Config) (sd *Semidiscretization, err error) {
	if eq.NDims() != mesh.Dimensions() {
		return nil, fmt.Errorf("%w: %d dimensional equation on a %d dimensional mesh",
			ErrShape, eq.NDims(), mesh.Dimensions())
	}
	if eq.NVariables() < 1 {
		return nil, fmt.Errorf("%w: equation has %d variables", ErrShape, eq.NVariables())
	}
	var tb *Tables
	if tb, err = NewTables(mesh, cfg.PolynomialDegree); err != nil {
		return nil, err
	}
	if err = cfg.validate(tb, eq); err != nil {
		return nil, err
	}
	sd = &Semidiscretization{
		Tables:   tb,
		Equation: eq,
		Config:   cfg,
		nvars:    eq.NVariables(),
		alpha:    make([]float64, tb.K),
	}
	sd.backend = NewReference(sd)
	return
}

func (cfg Config) validate(tb *Tables, eq Equation) error {
	switch cfg.VolumeIntegral {
	case VolumeIntegralWeakForm:
		if eq.HasNonconservativeTerms() {
			return fmt.Errorf("%w: the weak form volume integral does not support non-conservative terms",
				ErrConfig)
		}
	case VolumeIntegralFluxDifferencing:
	case VolumeIntegralShockCapturing:
		if cfg.Blending == nil {
			return fmt.Errorf("%w: shock capturing needs a blending provider", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown volume integral %d", ErrConfig, cfg.VolumeIntegral)
	}
	for _, bnd := range tb.Boundaries {
		if cfg.BoundaryConditions[bnd.Tag] == nil {
			return fmt.Errorf("%w: no boundary condition for tag %d", ErrConfig, bnd.Tag)
		}
	}
	return nil
}

func (sd *Semidiscretization) NVariables() int { return sd.nvars }

// Len is the number of entries of a solution or residual array.
func (sd *Semidiscretization) Len() int { return sd.Tables.K * sd.Tables.Np * sd.nvars }

func (sd *Semidiscretization) NewSolution() []float64 { return make([]float64, sd.Len()) }

// Initialize sets u to the nodal values of a function of position and time.
func (sd *Semidiscretization) Initialize(u []float64, ic func(x []float64, t float64, u []float64), t float64) {
	tb := sd.Tables
	for e := 0; e < tb.K; e++ {
		for node := 0; node < tb.Np; node++ {
			o := (e*tb.Np + node) * sd.nvars
			ic(tb.NodeX(e, node), t, u[o:o+sd.nvars])
		}
	}
}

// SetBackend releases the current backend and evaluates on b from now on.
func (sd *Semidiscretization) SetBackend(b Backend) {
	if sd.backend != nil && sd.backend != b {
		sd.backend.Free()
	}
	sd.backend = b
}

func (sd *Semidiscretization) Backend() Backend { return sd.backend }

// RHS evaluates du = du/dt(u, t), running every stage in order with a barrier
// between stages.
func (sd *Semidiscretization) RHS(du, u []float64, t float64) (err error) {
	if err = sd.Prepare(du, u, t); err != nil {
		return
	}
	for stage := StageReset; stage < NumStages; stage++ {
		if err = sd.RunStage(stage, t); err != nil {
			return
		}
	}
	return sd.Fetch(du)
}

// Prepare checks the shapes of du and u, evaluates the blending coefficients
// and binds the arrays to the backend for the following stages.
func (sd *Semidiscretization) Prepare(du, u []float64, t float64) (err error) {
	tb := sd.Tables
	if len(u) != sd.Len() || len(du) != sd.Len() {
		return fmt.Errorf("%w: u has %d and du %d entries, expected %d elements x %d nodes x %d variables",
			ErrShape, len(u), len(du), tb.K, tb.Np, sd.nvars)
	}
	if sd.VolumeIntegral == VolumeIntegralShockCapturing {
		sd.Blending.Blending(u, t, sd.alpha)
		for k, a := range sd.alpha {
			if !(a >= 0 && a <= 1) {
				return fmt.Errorf("%w: blending coefficient %v of element %d outside [0,1]", ErrConfig, a, k)
			}
		}
	}
	sd.reported = false
	return sd.backend.Bind(du, u, sd.alpha)
}

// RunStage dispatches one stage on the bound arrays and waits for it.
func (sd *Semidiscretization) RunStage(stage Stage, t float64) (err error) {
	if stage >= NumStages {
		return fmt.Errorf("%w: unknown stage %d", ErrConfig, stage)
	}
	if err = sd.backend.Launch(stage, t); err != nil {
		return fmt.Errorf("stage %s: %w", stage, err)
	}
	if err = sd.backend.Finish(); err != nil {
		return fmt.Errorf("stage %s: %w", stage, err)
	}
	if sd.Debug {
		sd.checkFinite(stage)
	}
	return
}

// Fetch copies the residual of the bound evaluation into du.
func (sd *Semidiscretization) Fetch(du []float64) error { return sd.backend.Fetch(du) }

func (sd *Semidiscretization) Snapshot(id BufferID) ([]float64, error) { return sd.backend.Snapshot(id) }

func (sd *Semidiscretization) checkFinite(stage Stage) {
	if sd.reported {
		return
	}
	du, err := sd.backend.Snapshot(BufferDU)
	if err != nil {
		log.Printf("debug check after %s: %v", stage, err)
		return
	}
	if i := utils.FirstNonFinite(du); i >= 0 {
		sd.reported = true
		size := sd.Tables.Np * sd.nvars
		log.Printf("stage %s produced %v in du at element %d node %d variable %d",
			stage, du[i], i/size, (i%size)/sd.nvars, i%sd.nvars)
	}
}
