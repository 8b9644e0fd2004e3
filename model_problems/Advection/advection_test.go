package Advection

import (
	"math"
	"testing"

	"github.com/notargets/treedg/DGSEM"
	"github.com/notargets/treedg/device"
	"github.com/notargets/treedg/treemesh"
	"github.com/notargets/treedg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvection(t *testing.T) {
	velocity := [3]float64{1, 0.5, -0.25}
	for ndims := 1; ndims <= 2; ndims++ {
		eq, err := NewAdvection(ndims, velocity, FLUX_Upwind)
		require.NoError(t, err)
		m, err := treemesh.New(treemesh.Config{NDims: ndims, Lo: [3]float64{-1, -1}, Hi: [3]float64{1, 1},
			InitialLevel: 4, Periodic: [3]bool{true, true}})
		require.NoError(t, err)
		var results [][]float64
		for _, vi := range []DGSEM.VolumeIntegral{DGSEM.VolumeIntegralWeakForm, DGSEM.VolumeIntegralFluxDifferencing} {
			sd, err := DGSEM.NewSemidiscretization(m, eq, DGSEM.Config{PolynomialDegree: 4, VolumeIntegral: vi})
			require.NoError(t, err)
			sd.SetBackend(DGSEM.NewParallel(sd, device.NewThreads(2)))
			u, du := sd.NewSolution(), sd.NewSolution()
			sd.Initialize(u, eq.ConvergenceTest, 0)
			require.NoError(t, sd.RHS(du, u, 0))
			maxErr := derivativeError(sd.Tables, eq, du, 0)
			assert.Lessf(t, maxErr, 1.e-3, "%dD %s", ndims, vi)
			results = append(results, du)
		}
		// With the central volume flux, flux differencing is the weak form
		assert.Less(t, utils.RelativeDiff(results[1], results[0]), 1.e-12)
	}
	{ // Walled domain with inflow from the exact solution
		eq, err := NewAdvection(2, velocity, FLUX_Upwind)
		require.NoError(t, err)
		m, err := treemesh.New(treemesh.Config{NDims: 2, Lo: [3]float64{-1, -1}, Hi: [3]float64{1, 1},
			InitialLevel: 3, Refine: []treemesh.RefineBox{{Hi: [3]float64{0.5, 0.5}, Level: 4}}})
		require.NoError(t, err)
		bcs := make(map[int]DGSEM.BoundaryCondition)
		for tag := 0; tag < 4; tag++ {
			bcs[tag] = DGSEM.BoundaryConditionDirichlet{State: eq.ConvergenceTest}
		}
		sd, err := DGSEM.NewSemidiscretization(m, eq, DGSEM.Config{PolynomialDegree: 4,
			VolumeIntegral: DGSEM.VolumeIntegralFluxDifferencing, BoundaryConditions: bcs})
		require.NoError(t, err)
		u, du := sd.NewSolution(), sd.NewSolution()
		sd.Initialize(u, eq.ConvergenceTest, 0.3)
		require.NoError(t, sd.RHS(du, u, 0.3))
		assert.Equal(t, -1, utils.FirstNonFinite(du))
		assert.Less(t, derivativeError(sd.Tables, eq, du, 0.3), 1.e-2)
	}
	{
		_, err := NewFluxType("roe")
		assert.Error(t, err)
		eq, _ := NewAdvection(1, velocity, FLUX_Central)
		_, err = eq.InitialCondition("square")
		assert.Error(t, err)
	}
}

// derivativeError is the max deviation of du from -a.grad(u) for the
// convergence test solution at time t.
func derivativeError(tb *DGSEM.Tables, eq *Advection, du []float64, t float64) (maxErr float64) {
	var aSum float64
	for d := 0; d < eq.Dims; d++ {
		aSum += eq.Velocity[d]
	}
	for e := 0; e < tb.K; e++ {
		for node := 0; node < tb.Np; node++ {
			var phase float64
			for d, xd := range tb.NodeX(e, node) {
				phase += xd - eq.Velocity[d]*t
			}
			exact := -aSum * 0.5 * math.Pi * math.Cos(math.Pi*phase)
			maxErr = math.Max(maxErr, math.Abs(du[e*tb.Np+node]-exact))
		}
	}
	return
}
