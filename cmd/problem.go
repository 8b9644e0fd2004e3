/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/notargets/treedg/DGSEM"
	"github.com/notargets/treedg/DGSEM/occa"
	"github.com/notargets/treedg/InputParameters"
	"github.com/notargets/treedg/device"
	"github.com/notargets/treedg/model_problems/Advection"
	"github.com/notargets/treedg/model_problems/Euler"
	"github.com/notargets/treedg/model_problems/ShallowWater"
	"github.com/notargets/treedg/treemesh"
	"github.com/notargets/treedg/types"
	"github.com/spf13/viper"
)

// Problem is a semidiscretization built from an input file, with its
// initial solution.
type Problem struct {
	IP   *InputParameters.InputParameters
	Mesh *treemesh.Mesh
	SD   *DGSEM.Semidiscretization
	U    []float64
}

func readInput(fileName string) (ip *InputParameters.InputParameters, err error) {
	if len(fileName) == 0 {
		exampleFile := `
########################################
Title: "Weak Blast Wave"
Equation: euler
Dimensions: 2
PolynomialOrder: 3
InitialRefinementLevel: 3
Periodic: [true, true]
VolumeIntegral: shock_capturing
SurfaceFlux: lax_friedrichs
VolumeFlux: ranocha
Alpha: 0.3
InitType: weak_blast_wave
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
	}
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, err
	}
	return
}

// NewProblem builds the mesh, equation, boundary conditions and initial
// solution described by ip.
func NewProblem(ip *InputParameters.InputParameters) (p *Problem, err error) {
	p = &Problem{IP: ip}
	if p.Mesh, err = treemesh.New(ip.MeshConfig()); err != nil {
		return nil, err
	}
	var (
		eq   DGSEM.Equation
		ic   func(x []float64, t float64, u []float64)
		wall DGSEM.BoundaryCondition
		cfg  = DGSEM.Config{PolynomialDegree: ip.PolynomialOrder, Debug: ip.Debug}
		bcs  = make(map[int]DGSEM.BoundaryCondition)
		surf = ip.SurfaceFlux
		vol  = ip.VolumeFlux
	)
	switch strings.ToLower(ip.Equation) {
	case "euler":
		var sf, vf Euler.FluxType
		if sf, err = Euler.NewFluxType(defaultString(surf, "lax_friedrichs")); err != nil {
			return nil, err
		}
		if vf, err = Euler.NewFluxType(defaultString(vol, "ranocha")); err != nil {
			return nil, err
		}
		var e *Euler.Euler
		if e, err = Euler.NewEuler(ip.Dimensions, ip.Gamma, sf, vf); err != nil {
			return nil, err
		}
		var it Euler.InitType
		if it, err = Euler.NewInitType(defaultString(ip.InitType, "weak_blast_wave")); err != nil {
			return nil, err
		}
		eq, ic, wall = e, e.InitialCondition(it), e.SlipWall()
	case "advection":
		var sf Advection.FluxType
		if sf, err = Advection.NewFluxType(defaultString(surf, "upwind")); err != nil {
			return nil, err
		}
		var velocity [3]float64
		copy(velocity[:], ip.AdvectionVelocity)
		var a *Advection.Advection
		if a, err = Advection.NewAdvection(ip.Dimensions, velocity, sf); err != nil {
			return nil, err
		}
		if ic, err = a.InitialCondition(defaultString(ip.InitType, "convergence_test")); err != nil {
			return nil, err
		}
		// Walls of a scalar problem hold the exact solution
		eq, wall = a, DGSEM.BoundaryConditionDirichlet{State: ic}
	case "shallow_water":
		var sf, vf ShallowWater.FluxType
		if sf, err = ShallowWater.NewFluxType(defaultString(surf, "lax_friedrichs")); err != nil {
			return nil, err
		}
		if vf, err = ShallowWater.NewFluxType(defaultString(vol, "wintermeyer")); err != nil {
			return nil, err
		}
		var sw *ShallowWater.ShallowWater
		if sw, err = ShallowWater.NewShallowWater(ip.Dimensions, ip.Gravity, sf, vf); err != nil {
			return nil, err
		}
		var it ShallowWater.InitType
		if it, err = ShallowWater.NewInitType(defaultString(ip.InitType, "gaussian_hump")); err != nil {
			return nil, err
		}
		eq, ic, wall = sw, sw.InitialCondition(it, ShallowWater.SmoothBump), sw.SlipWall()
	default:
		return nil, fmt.Errorf("unknown equation %s, must be one of euler, advection, shallow_water", ip.Equation)
	}
	for face, bf := range ip.BoundaryTypes() {
		switch bf {
		case types.BC_Wall:
			bcs[face] = wall
		case types.BC_Out:
			bcs[face] = DGSEM.BoundaryConditionOutflow{}
		case types.BC_Dirichlet:
			bcs[face] = DGSEM.BoundaryConditionDirichlet{State: ic}
		default:
			return nil, fmt.Errorf("boundary condition %s can not be used on face %s", bf, types.FaceNames[face])
		}
	}
	cfg.BoundaryConditions = bcs
	if cfg.VolumeIntegral, err = DGSEM.NewVolumeIntegral(ip.VolumeIntegral); err != nil {
		return nil, err
	}
	if cfg.VolumeIntegral == DGSEM.VolumeIntegralShockCapturing {
		cfg.Blending = DGSEM.ConstantBlending(ip.Alpha)
	}
	if p.SD, err = DGSEM.NewSemidiscretization(p.Mesh, eq, cfg); err != nil {
		return nil, err
	}
	p.U = p.SD.NewSolution()
	p.SD.Initialize(p.U, ic, 0)
	return
}

func defaultString(s, def string) string {
	if len(s) == 0 {
		return def
	}
	return s
}

// NewBackend creates a backend by name. threads sizes the parallel backend,
// props are the OCCA device properties.
func NewBackend(name string, sd *DGSEM.Semidiscretization, threads int, props string) (DGSEM.Backend, error) {
	switch strings.ToLower(name) {
	case "reference":
		return DGSEM.NewReference(sd), nil
	case "serial":
		return DGSEM.NewParallel(sd, device.Serial{}), nil
	case "parallel", "threads":
		return DGSEM.NewParallel(sd, device.NewThreads(threads)), nil
	case "occa":
		return occa.NewBackend(sd, props)
	}
	return nil, fmt.Errorf("%w: unknown backend %s, must be one of reference, serial, parallel, occa",
		DGSEM.ErrConfig, name)
}

// selectBackend sets the backend of p from the command line, the config
// file and the input file, in that order.
func (p *Problem) selectBackend() (err error) {
	var (
		name    = p.IP.Backend
		threads = p.IP.Threads
		be      DGSEM.Backend
	)
	if n := viper.GetString("backend"); len(n) != 0 {
		name = n
	}
	if n := viper.GetInt("threads"); n != 0 {
		threads = n
	}
	if be, err = NewBackend(name, p.SD, threads, viper.GetString("device")); err != nil {
		return
	}
	p.SD.SetBackend(be)
	return
}
