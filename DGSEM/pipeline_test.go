package DGSEM

import (
	"math"
	"math/rand"
	"testing"

	"github.com/notargets/treedg/device"
	"github.com/notargets/treedg/treemesh"
	"github.com/notargets/treedg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEquation advects its first variable and applies Burgers to the second,
// with an optional non-conservative product coupling the two.
type testEquation struct {
	ndims         int
	a             [3]float64
	ncons         float64
	nanVolumeFlux bool
}

func (eq testEquation) NDims() int      { return eq.ndims }
func (eq testEquation) NVariables() int { return 2 }

func (eq testEquation) Flux(u []float64, o int, f []float64) {
	f[0] = eq.a[o] * u[0]
	f[1] = 0.5 * u[1] * u[1]
}

func (eq testEquation) SurfaceFlux(uL, uR []float64, o int, f []float64) {
	lambda := math.Max(math.Abs(eq.a[o]), math.Max(math.Abs(uL[1]), math.Abs(uR[1])))
	f[0] = 0.5*eq.a[o]*(uL[0]+uR[0]) - 0.5*lambda*(uR[0]-uL[0])
	f[1] = 0.25*(uL[1]*uL[1]+uR[1]*uR[1]) - 0.5*lambda*(uR[1]-uL[1])
}

func (eq testEquation) VolumeFlux(uL, uR []float64, o int, f []float64) {
	if eq.nanVolumeFlux {
		f[0], f[1] = math.NaN(), math.NaN()
		return
	}
	f[0] = 0.5 * eq.a[o] * (uL[0] + uR[0])
	f[1] = (uL[1]*uL[1] + uL[1]*uR[1] + uR[1]*uR[1]) / 6
}

func (eq testEquation) HasNonconservativeTerms() bool { return eq.ncons != 0 }

func (eq testEquation) NonconservativeFlux(uLL, uRR []float64, o int, f []float64) {
	f[0] = 0
	f[1] = eq.ncons * uLL[1] * uRR[0]
}

var testMeshes = []treemesh.Config{
	{NDims: 1, Lo: [3]float64{-1}, Hi: [3]float64{1}, InitialLevel: 3, Periodic: [3]bool{true}},
	{NDims: 1, Hi: [3]float64{1}, InitialLevel: 2, Refine: []treemesh.RefineBox{{Lo: [3]float64{0.3}, Hi: [3]float64{0.6}, Level: 4}}},
	{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 2, Refine: []treemesh.RefineBox{{Hi: [3]float64{0.49, 0.49}, Level: 3}}},
	{NDims: 2, Hi: [3]float64{1, 1}, InitialLevel: 2, Periodic: [3]bool{true, true},
		Refine: []treemesh.RefineBox{{Hi: [3]float64{0.49, 0.49}, Level: 3}}},
	{NDims: 3, Hi: [3]float64{1, 1, 1}, InitialLevel: 1, Refine: []treemesh.RefineBox{{Hi: [3]float64{0.4, 0.4, 0.4}, Level: 2}}},
}

func testBCs(ndims int) (bcs map[int]BoundaryCondition) {
	bcs = map[int]BoundaryCondition{
		0: BoundaryConditionDirichlet{State: func(x []float64, t float64, u []float64) {
			u[0], u[1] = 1+0.1*x[0]+t, 0.5
		}},
	}
	for tag := 1; tag < 2*ndims; tag++ {
		bcs[tag] = BoundaryConditionOutflow{}
	}
	return
}

func testConfig(ndims int, vi VolumeIntegral) Config {
	return Config{
		PolynomialDegree:   3,
		VolumeIntegral:     vi,
		BoundaryConditions: testBCs(ndims),
		Sources: SourceFunc(func(u, x []float64, t float64, s []float64) {
			s[0], s[1] = math.Sin(x[0])*u[1], 0.1*t
		}),
		Blending: BlendingFunc(func(u []float64, t float64, alpha []float64) {
			for k := range alpha {
				alpha[k] = []float64{0, 1, 0.3}[k%3]
			}
		}),
	}
}

func randomState(sd *Semidiscretization, seed int64) (u []float64) {
	rng := rand.New(rand.NewSource(seed))
	u = sd.NewSolution()
	for i := range u {
		u[i] = 0.5 + rng.Float64()
	}
	return
}

func testEquationFor(ndims int, ncons float64) testEquation {
	return testEquation{ndims: ndims, a: [3]float64{1, -0.5, 0.25}, ncons: ncons}
}

var stageOutputs = [NumStages][]BufferID{
	StageReset:             {BufferDU},
	StageVolumeIntegral:    {BufferDU},
	StageProlongInterfaces: {BufferInterfaceU},
	StageInterfaceFlux:     {BufferSurfaceFlux},
	StageProlongBoundaries: {BufferBoundaryU},
	StageBoundaryFlux:      {BufferSurfaceFlux},
	StageProlongMortars:    {BufferMortarU},
	StageMortarFlux:        {BufferMortarFlux, BufferSurfaceFlux},
	StageSurfaceIntegral:   {BufferDU},
	StageJacobian:          {BufferDU},
	StageSources:           {BufferDU},
}

func TestStageEquivalence(t *testing.T) {
	for _, mcfg := range testMeshes {
		m, err := treemesh.New(mcfg)
		require.NoError(t, err)
		for _, ncons := range []float64{0, 0.3} {
			for _, vi := range []VolumeIntegral{VolumeIntegralWeakForm, VolumeIntegralFluxDifferencing,
				VolumeIntegralShockCapturing} {
				if ncons != 0 && vi == VolumeIntegralWeakForm {
					continue
				}
				var (
					eq   = testEquationFor(mcfg.NDims, ncons)
					cfg  = testConfig(mcfg.NDims, vi)
					name = m.String() + " " + vi.String()
				)
				ref, err := NewSemidiscretization(m, eq, cfg)
				require.NoError(t, err)
				par, err := NewSemidiscretization(m, eq, cfg)
				require.NoError(t, err)
				par.SetBackend(NewParallel(par, device.NewThreads(4)))

				u := randomState(ref, 7)
				duRef, duPar := ref.NewSolution(), par.NewSolution()
				require.NoError(t, ref.Prepare(duRef, u, 0.1))
				require.NoError(t, par.Prepare(duPar, u, 0.1))
				for stage := StageReset; stage < NumStages; stage++ {
					require.NoError(t, ref.RunStage(stage, 0.1))
					require.NoError(t, par.RunStage(stage, 0.1))
					for _, id := range stageOutputs[stage] {
						a, err := ref.Snapshot(id)
						require.NoError(t, err)
						b, err := par.Snapshot(id)
						require.NoError(t, err)
						assert.Lessf(t, utils.RelativeDiff(b, a), 1.e-12, "%s ncons=%v: %s %s", name, ncons, stage, id)
					}
				}
				require.NoError(t, ref.Fetch(duRef))
				require.NoError(t, par.Fetch(duPar))
				assert.Equal(t, -1, utils.FirstNonFinite(duRef), name)
				assert.Less(t, utils.RelativeDiff(duPar, duRef), 1.e-12, name)
				assert.Greater(t, utils.MaxAbs(duRef, 1, 0), 0.)

				// The single entry point runs the same stages
				du := ref.NewSolution()
				require.NoError(t, ref.RHS(du, u, 0.1))
				assert.Equal(t, duRef, du, name)
			}
		}
	}
}

func TestFreeStream(t *testing.T) {
	for _, mcfg := range testMeshes {
		m, err := treemesh.New(mcfg)
		require.NoError(t, err)
		for _, ncons := range []float64{0, 0.3} {
			for _, vi := range []VolumeIntegral{VolumeIntegralFluxDifferencing, VolumeIntegralShockCapturing} {
				cfg := testConfig(mcfg.NDims, vi)
				cfg.Sources = nil
				for tag := range cfg.BoundaryConditions {
					cfg.BoundaryConditions[tag] = BoundaryConditionOutflow{}
				}
				sd, err := NewSemidiscretization(m, testEquationFor(mcfg.NDims, ncons), cfg)
				require.NoError(t, err)
				for _, b := range []Backend{NewReference(sd), NewParallel(sd, device.NewThreads(3))} {
					sd.SetBackend(b)
					u, du := sd.NewSolution(), sd.NewSolution()
					sd.Initialize(u, func(x []float64, t float64, u []float64) { u[0], u[1] = 1.3, 0.7 }, 0)
					require.NoError(t, sd.RHS(du, u, 0))
					assert.Lessf(t, utils.MaxAbs(du, 1, 0), 1.e-11, "%s %s %s", m, vi, b.Name())
				}
			}
		}
	}
}

func TestSources(t *testing.T) {
	m, err := treemesh.New(testMeshes[3])
	require.NoError(t, err)
	cfg := testConfig(2, VolumeIntegralFluxDifferencing)
	cfg.Sources = SourceFunc(func(u, x []float64, t float64, s []float64) { s[0], s[1] = 2, -1 })
	sd, err := NewSemidiscretization(m, testEquationFor(2, 0), cfg)
	require.NoError(t, err)
	u, du := sd.NewSolution(), sd.NewSolution()
	sd.Initialize(u, func(x []float64, t float64, u []float64) { u[0], u[1] = 1, 2 }, 0)
	require.NoError(t, sd.RHS(du, u, 0))
	assert.InDelta(t, 2., utils.MaxAbs(du, 2, 0), 1.e-11)
	assert.InDelta(t, 1., utils.MaxAbs(du, 2, 1), 1.e-11)
	assert.InDelta(t, 1., utils.NormL2(du, 2, 1)/math.Sqrt(float64(len(du)/2)), 1.e-11)
}

func TestInterfaceAntisymmetry(t *testing.T) {
	for _, mcfg := range testMeshes {
		m, err := treemesh.New(mcfg)
		require.NoError(t, err)
		sd, err := NewSemidiscretization(m, testEquationFor(mcfg.NDims, 0),
			testConfig(mcfg.NDims, VolumeIntegralFluxDifferencing))
		require.NoError(t, err)
		sd.SetBackend(NewParallel(sd, device.NewThreads(2)))
		du := sd.NewSolution()
		require.NoError(t, sd.RHS(du, randomState(sd, 3), 0))
		buf := sd.Backend().(*Parallel).Buffers()
		tb := sd.Tables
		// Both faces receive the same flux and lift it with opposite signs
		assert.Equal(t, tb.SurfaceFactor[0], tb.SurfaceFactor[1])
		for _, iface := range tb.Interfaces {
			for j := 0; j < tb.Nfp; j++ {
				assert.Equal(t, buf.FaceNode(iface.Left, 2*iface.Orientation+1, j),
					buf.FaceNode(iface.Right, 2*iface.Orientation, j))
			}
		}
	}
}

func TestMortarConservation(t *testing.T) {
	for _, mcfg := range testMeshes[2:] {
		m, err := treemesh.New(mcfg)
		require.NoError(t, err)
		require.Greater(t, len(m.Mortars), 0)
		for N := 1; N <= 4; N++ {
			cfg := testConfig(mcfg.NDims, VolumeIntegralFluxDifferencing)
			cfg.PolynomialDegree = N
			eq := testEquationFor(mcfg.NDims, 0)
			sd, err := NewSemidiscretization(m, eq, cfg)
			require.NoError(t, err)
			tb := sd.Tables
			buf := sd.Backend().(*Reference).Buffers()
			faceWeight := func(j int) (w float64) {
				w = 1
				for d := 0; d < tb.NDims-1; d, j = d+1, j/tb.NNodes {
					w *= tb.Basis.W[j%tb.NNodes]
				}
				return
			}
			{ // The large face carries the area weighted integral of the subface fluxes
				du := sd.NewSolution()
				require.NoError(t, sd.RHS(du, randomState(sd, int64(N)), 0))
				for mi, mo := range tb.Mortars {
					largeFace, smallFace := FaceOf(mo)
					for v := 0; v < 2; v++ {
						var large, small float64
						for j := 0; j < tb.Nfp; j++ {
							large += faceWeight(j) * buf.FaceNode(mo.Large, largeFace, j)[v]
							for s := 0; s < tb.NSub; s++ {
								fs := buf.FaceNode(mo.Small[s], smallFace, j)[v]
								assert.Equal(t, buf.MortarNode(buf.MortarFlux, mo.LargeSide, mi, s, j)[v], fs)
								small += faceWeight(j) * fs / float64(tb.NSub)
							}
						}
						assert.InDeltaf(t, small, large, 1.e-12, "N=%d mortar %d var %d", N, mi, v)
					}
				}
			}
			{ // A uniform state gives the large face the flux of a conforming neighbor
				u, du := sd.NewSolution(), sd.NewSolution()
				state := []float64{0.8, 1.1}
				sd.Initialize(u, func(x []float64, t float64, u []float64) { copy(u, state) }, 0)
				require.NoError(t, sd.RHS(du, u, 0))
				f := make([]float64, 2)
				for _, mo := range tb.Mortars {
					eq.SurfaceFlux(state, state, mo.Orientation, f)
					largeFace, _ := FaceOf(mo)
					for j := 0; j < tb.Nfp; j++ {
						assert.InDeltaSlice(t, f, buf.FaceNode(mo.Large, largeFace, j), 1.e-13)
					}
				}
			}
		}
	}
}

// Every staging entry a stage reads is written earlier in the same
// evaluation, so sentinels planted in the staging buffers never reach du.
func TestStagingCoverage(t *testing.T) {
	for _, mcfg := range testMeshes {
		m, err := treemesh.New(mcfg)
		require.NoError(t, err)
		cfg := testConfig(mcfg.NDims, VolumeIntegralShockCapturing)
		sd, err := NewSemidiscretization(m, testEquationFor(mcfg.NDims, 0.2), cfg)
		require.NoError(t, err)
		for _, b := range []Backend{NewReference(sd), NewParallel(sd, device.NewThreads(4))} {
			sd.SetBackend(b)
			var buf *Buffers
			switch bb := b.(type) {
			case *Reference:
				buf = bb.Buffers()
			case *Parallel:
				buf = bb.Buffers()
			}
			for _, a := range [][]float64{buf.InterfaceU, buf.BoundaryU, buf.MortarU, buf.MortarFlux,
				buf.SurfaceFlux} {
				for i := range a {
					a[i] = math.NaN()
				}
			}
			du := sd.NewSolution()
			for i := range du {
				du[i] = math.NaN()
			}
			require.NoError(t, sd.RHS(du, randomState(sd, 11), 0.2))
			assert.Equal(t, -1, utils.FirstNonFinite(du), b.Name())
			assert.Equal(t, -1, utils.FirstNonFinite(buf.SurfaceFlux), b.Name())
			assert.Equal(t, -1, utils.FirstNonFinite(buf.MortarU), b.Name())
			assert.Equal(t, -1, utils.FirstNonFinite(buf.MortarFlux), b.Name())
		}
	}
}

func TestResetAndDeterminism(t *testing.T) {
	m, err := treemesh.New(testMeshes[4])
	require.NoError(t, err)
	sd, err := NewSemidiscretization(m, testEquationFor(3, 0.1), testConfig(3, VolumeIntegralShockCapturing))
	require.NoError(t, err)
	u := randomState(sd, 5)
	for _, b := range []Backend{NewReference(sd), NewParallel(sd, device.NewThreads(5))} {
		sd.SetBackend(b)
		once, twice := sd.NewSolution(), sd.NewSolution()
		for i := range twice {
			twice[i] = 42
		}
		require.NoError(t, sd.Prepare(once, u, 0))
		require.NoError(t, sd.RunStage(StageReset, 0))
		require.NoError(t, sd.RunStage(StageVolumeIntegral, 0))
		require.NoError(t, sd.Fetch(once))
		require.NoError(t, sd.Prepare(twice, u, 0))
		require.NoError(t, sd.RunStage(StageReset, 0))
		require.NoError(t, sd.RunStage(StageReset, 0))
		require.NoError(t, sd.RunStage(StageVolumeIntegral, 0))
		require.NoError(t, sd.Fetch(twice))
		assert.Equal(t, once, twice, b.Name())

		du1, du2 := sd.NewSolution(), sd.NewSolution()
		require.NoError(t, sd.RHS(du1, u, 0.5))
		require.NoError(t, sd.RHS(du2, u, 0.5))
		assert.Equal(t, du1, du2, b.Name())
	}
}

func TestBlendingExtremes(t *testing.T) {
	m, err := treemesh.New(testMeshes[3])
	require.NoError(t, err)
	for _, ncons := range []float64{0, 0.4} {
		eq := testEquationFor(2, ncons)
		fd, err := NewSemidiscretization(m, eq, testConfig(2, VolumeIntegralFluxDifferencing))
		require.NoError(t, err)
		cfg := testConfig(2, VolumeIntegralShockCapturing)
		cfg.Blending = ConstantBlending(0)
		sc, err := NewSemidiscretization(m, eq, cfg)
		require.NoError(t, err)
		u := randomState(fd, 9)
		for _, withThreads := range []bool{false, true} {
			if withThreads {
				fd.SetBackend(NewParallel(fd, device.NewThreads(4)))
				sc.SetBackend(NewParallel(sc, device.NewThreads(4)))
			}
			// alpha == 0 is pure flux differencing, bit for bit
			duFD, duSC := fd.NewSolution(), sc.NewSolution()
			require.NoError(t, fd.RHS(duFD, u, 0))
			require.NoError(t, sc.RHS(duSC, u, 0))
			assert.Equal(t, duFD, duSC)
		}

		// alpha == 1 never evaluates the volume flux
		eq.nanVolumeFlux = true
		cfg.Blending = ConstantBlending(1)
		var results [][]float64
		for _, withThreads := range []bool{false, true} {
			fv, err := NewSemidiscretization(m, eq, cfg)
			require.NoError(t, err)
			if withThreads {
				fv.SetBackend(NewParallel(fv, device.NewThreads(4)))
			}
			du := fv.NewSolution()
			require.NoError(t, fv.RHS(du, u, 0))
			assert.Equal(t, -1, utils.FirstNonFinite(du))
			results = append(results, du)
		}
		assert.Less(t, utils.RelativeDiff(results[1], results[0]), 1.e-12)
	}
}

func TestErrors(t *testing.T) {
	m, err := treemesh.New(testMeshes[2])
	require.NoError(t, err)
	{
		_, err = NewSemidiscretization(m, testEquationFor(3, 0), testConfig(2, VolumeIntegralWeakForm))
		assert.ErrorIs(t, err, ErrShape)
		_, err = NewSemidiscretization(m, testEquationFor(2, 0.1), testConfig(2, VolumeIntegralWeakForm))
		assert.ErrorIs(t, err, ErrConfig)
		cfg := testConfig(2, VolumeIntegralShockCapturing)
		cfg.Blending = nil
		_, err = NewSemidiscretization(m, testEquationFor(2, 0), cfg)
		assert.ErrorIs(t, err, ErrConfig)
		cfg = testConfig(2, VolumeIntegralWeakForm)
		delete(cfg.BoundaryConditions, 3)
		_, err = NewSemidiscretization(m, testEquationFor(2, 0), cfg)
		assert.ErrorIs(t, err, ErrConfig)
		cfg = testConfig(2, VolumeIntegralWeakForm)
		cfg.PolynomialDegree = 0
		_, err = NewSemidiscretization(m, testEquationFor(2, 0), cfg)
		assert.ErrorIs(t, err, ErrConfig)
		_, err = NewVolumeIntegral("spectral")
		assert.ErrorIs(t, err, ErrConfig)
		vi, err := NewVolumeIntegral(" Shock_Capturing")
		assert.NoError(t, err)
		assert.Equal(t, VolumeIntegralShockCapturing, vi)
	}
	{
		cfg := testConfig(2, VolumeIntegralShockCapturing)
		cfg.Blending = ConstantBlending(1.5)
		sd, err := NewSemidiscretization(m, testEquationFor(2, 0), cfg)
		require.NoError(t, err)
		u := sd.NewSolution()
		assert.ErrorIs(t, sd.RHS(sd.NewSolution(), u, 0), ErrConfig)
		assert.ErrorIs(t, sd.RHS(make([]float64, 3), u, 0), ErrShape)
		assert.ErrorIs(t, sd.RunStage(NumStages, 0), ErrConfig)
	}
	{ // Non-finite values propagate, the debug check only reports them
		cfg := testConfig(2, VolumeIntegralFluxDifferencing)
		cfg.Debug = true
		sd, err := NewSemidiscretization(m, testEquationFor(2, 0), cfg)
		require.NoError(t, err)
		u, du := randomState(sd, 1), sd.NewSolution()
		u[17] = math.Inf(1)
		assert.NoError(t, sd.RHS(du, u, 0))
		assert.NotEqual(t, -1, utils.FirstNonFinite(du))
	}
}
