//go:build occa

package occa

import (
	"errors"
	"testing"

	"github.com/notargets/treedg/DGSEM"
	"github.com/notargets/treedg/model_problems/Euler"
	"github.com/notargets/treedg/model_problems/ShallowWater"
	"github.com/notargets/treedg/treemesh"
	"github.com/notargets/treedg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compareStages runs the reference and the OCCA backend stage by stage and
// compares every buffer after every stage.
func compareStages(t *testing.T, sd *DGSEM.Semidiscretization, u []float64) {
	var (
		du  = sd.NewSolution()
		ref = make(map[DGSEM.Stage][][]float64)
		ids = []DGSEM.BufferID{DGSEM.BufferDU, DGSEM.BufferInterfaceU, DGSEM.BufferBoundaryU,
			DGSEM.BufferMortarU, DGSEM.BufferMortarFlux, DGSEM.BufferSurfaceFlux}
	)
	sd.SetBackend(DGSEM.NewReference(sd))
	require.NoError(t, sd.Prepare(du, u, 0.1))
	for stage := DGSEM.StageReset; stage < DGSEM.NumStages; stage++ {
		require.NoError(t, sd.RunStage(stage, 0.1))
		for _, id := range ids {
			a, err := sd.Snapshot(id)
			require.NoError(t, err)
			ref[stage] = append(ref[stage], a)
		}
	}
	be, err := NewBackend(sd, `{"mode": "Serial"}`)
	require.NoError(t, err)
	sd.SetBackend(be)
	defer sd.SetBackend(DGSEM.NewReference(sd))
	require.NoError(t, sd.Prepare(du, u, 0.1))
	for stage := DGSEM.StageReset; stage < DGSEM.NumStages; stage++ {
		require.NoError(t, sd.RunStage(stage, 0.1))
		for i, id := range ids {
			a, err := sd.Snapshot(id)
			require.NoError(t, err)
			assert.Lessf(t, utils.RelativeDiff(a, ref[stage][i]), 1.e-12, "stage %s buffer %s", stage, id)
		}
	}
	require.NoError(t, sd.Fetch(du))
	assert.Less(t, utils.RelativeDiff(du, ref[DGSEM.NumStages-1][0]), 1.e-12)
}

func TestOCCAEuler(t *testing.T) {
	mcfg := treemesh.Config{NDims: 2, Lo: [3]float64{-1, -1}, Hi: [3]float64{1, 1}, InitialLevel: 2,
		Refine: []treemesh.RefineBox{{Lo: [3]float64{-0.5, -0.5}, Hi: [3]float64{0.5, 0.5}, Level: 3}}}
	m, err := treemesh.New(mcfg)
	require.NoError(t, err)
	eq, err := Euler.NewEuler(2, 1.4, Euler.FLUX_LaxFriedrichs, Euler.FLUX_Ranocha)
	require.NoError(t, err)
	bcs := make(map[int]DGSEM.BoundaryCondition)
	for tag := 0; tag < 4; tag++ {
		bcs[tag] = eq.SlipWall()
	}
	sd, err := DGSEM.NewSemidiscretization(m, eq, DGSEM.Config{
		PolynomialDegree:   3,
		VolumeIntegral:     DGSEM.VolumeIntegralShockCapturing,
		BoundaryConditions: bcs,
		Blending: DGSEM.BlendingFunc(func(u []float64, t float64, alpha []float64) {
			for k := range alpha {
				alpha[k] = []float64{0, 1, 0.3}[k%3]
			}
		}),
		Sources: DGSEM.SourceFunc(func(u, x []float64, t float64, s []float64) {
			for v := range s {
				s[v] = 0.01 * x[0] * u[v]
			}
		}),
	})
	require.NoError(t, err)
	u := sd.NewSolution()
	sd.Initialize(u, eq.WeakBlastWave, 0)
	compareStages(t, sd, u)
}

func TestOCCAShallowWater(t *testing.T) {
	m, err := treemesh.New(treemesh.Config{NDims: 2, Lo: [3]float64{-1, -1}, Hi: [3]float64{1, 1}, InitialLevel: 2,
		Refine: []treemesh.RefineBox{{Lo: [3]float64{-0.5, -0.5}, Hi: [3]float64{0.5, 0.5}, Level: 3}}})
	require.NoError(t, err)
	eq, err := ShallowWater.NewShallowWater(2, 9.81, ShallowWater.FLUX_LaxFriedrichs, ShallowWater.FLUX_Wintermeyer)
	require.NoError(t, err)
	bcs := make(map[int]DGSEM.BoundaryCondition)
	for tag := 0; tag < 4; tag++ {
		bcs[tag] = eq.SlipWall()
	}
	sd, err := DGSEM.NewSemidiscretization(m, eq, DGSEM.Config{PolynomialDegree: 3,
		VolumeIntegral: DGSEM.VolumeIntegralFluxDifferencing, BoundaryConditions: bcs})
	require.NoError(t, err)
	u := sd.NewSolution()
	sd.Initialize(u, eq.InitialCondition(ShallowWater.GAUSSIANHUMP, ShallowWater.SmoothBump), 0)
	compareStages(t, sd, u)

	// Launch before Bind
	be, err := NewBackend(sd, `{"mode": "Serial"}`)
	require.NoError(t, err)
	defer be.Free()
	err = be.Launch(DGSEM.StageReset, 0)
	assert.True(t, errors.Is(err, DGSEM.ErrConfig))
	_, err = NewBackend(sd, `{"mode": "NoSuchMode"}`)
	assert.Error(t, err)
}
