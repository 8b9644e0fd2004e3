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
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"github.com/notargets/treedg/InputParameters"
	"github.com/notargets/treedg/utils"
	"github.com/spf13/cobra"
)

// RHSCmd represents the rhs command
var RHSCmd = &cobra.Command{
	Use:   "rhs",
	Short: "Evaluate the residual of an input problem and compare backends",
	Long: `
Evaluates du/dt of the initial solution on the selected backend and on the
sequential reference, and reports the per variable difference and norms.

treedg rhs -I input.yaml --backend parallel --threads 8`,
	Run: func(cmd *cobra.Command, args []string) {
		fileName, _ := cmd.Flags().GetString("inputConditionsFile")
		graph, _ := cmd.Flags().GetBool("graph")
		delay, _ := cmd.Flags().GetInt("delay")
		ip, err := readInput(fileName)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		ip.Print()
		var rep *RHSReport
		if rep, err = RunRHS(ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		rep.Print()
		if graph {
			if err = rep.Plot(time.Duration(delay) * time.Millisecond); err != nil {
				fmt.Printf("error: %s\n", err.Error())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(RHSCmd)
	RHSCmd.Flags().BoolP("graph", "g", false, "plot the solution and residual of a 1D problem")
	RHSCmd.Flags().IntP("delay", "d", 5000, "milliseconds to display the plot")
}

type RHSReport struct {
	Backend         string
	Elapsed         time.Duration // Of the backend evaluation
	MaxDiff, NormL2 []float64     // Per variable, MaxDiff is against the reference
	RelativeDiff    float64
	X, U, DU        []float64 // 1D plot data
	NVars, NDims    int
}

// RunRHS evaluates the residual of ip on the reference and on the configured
// backend.
func RunRHS(ip *InputParameters.InputParameters) (rep *RHSReport, err error) {
	var p *Problem
	if p, err = NewProblem(ip); err != nil {
		return
	}
	sd := p.SD
	duRef := sd.NewSolution()
	if err = sd.RHS(duRef, p.U, 0); err != nil {
		return
	}
	if err = p.selectBackend(); err != nil {
		return
	}
	defer sd.Backend().Free()
	du := sd.NewSolution()
	start := time.Now()
	if err = sd.RHS(du, p.U, 0); err != nil {
		return
	}
	nv := sd.NVariables()
	rep = &RHSReport{
		Backend:      sd.Backend().Name(),
		Elapsed:      time.Since(start),
		MaxDiff:      make([]float64, nv),
		NormL2:       make([]float64, nv),
		RelativeDiff: utils.RelativeDiff(du, duRef),
		X:            sd.Tables.X,
		U:            p.U,
		DU:           du,
		NVars:        nv,
		NDims:        sd.Tables.NDims,
	}
	for v := 0; v < nv; v++ {
		rep.MaxDiff[v] = utils.MaxAbsDiff(du, duRef, nv, v)
		rep.NormL2[v] = utils.NormL2(du, nv, v)
	}
	return
}

func (rep *RHSReport) Print() {
	fmt.Printf("Backend: %s, residual evaluated in %v\n", rep.Backend, rep.Elapsed)
	fmt.Printf("%8s %22s %22s\n", "Variable", "L2(du)", "max|du - du_ref|")
	for v := 0; v < rep.NVars; v++ {
		fmt.Printf("%8d %22.15e %22.15e\n", v, rep.NormL2[v], rep.MaxDiff[v])
	}
	fmt.Printf("Relative difference to reference: %g\n", rep.RelativeDiff)
}

// Plot draws every variable of the solution and its residual along x, for
// 1D problems.
func (rep *RHSReport) Plot(delay time.Duration) (err error) {
	if rep.NDims != 1 {
		return fmt.Errorf("plotting is available for 1D problems, have %dD", rep.NDims)
	}
	var (
		n          = len(rep.X)
		xmin, xmax = rep.X[0], rep.X[n-1]
		fmin, fmax float64
		series     = make([][]float64, 2*rep.NVars)
	)
	for v := 0; v < rep.NVars; v++ {
		series[v], series[rep.NVars+v] = make([]float64, n), make([]float64, n)
		for i := 0; i < n; i++ {
			series[v][i], series[rep.NVars+v][i] = rep.U[i*rep.NVars+v], rep.DU[i*rep.NVars+v]
		}
	}
	for _, s := range series {
		for _, f := range s {
			fmin, fmax = min(fmin, f), max(fmax, f)
		}
	}
	chart := chart2d.NewChart2D(1920, 1280, float32(xmin), float32(xmax), float32(fmin), float32(fmax))
	colorMap := utils2.NewColorMap(-1, 1, 1)
	go chart.Plot()
	for s, f := range series {
		var (
			name  = fmt.Sprintf("U[%d]", s%rep.NVars)
			line  = chart2d.Solid
			color = -0.7 + 1.4*float32(s%rep.NVars)/float32(max(1, rep.NVars-1))
		)
		if s >= rep.NVars {
			name, line = fmt.Sprintf("dU[%d]", s%rep.NVars), chart2d.Dashed
		}
		if err = chart.AddSeries(name, rep.X, f, chart2d.NoGlyph, line, colorMap.GetRGB(color)); err != nil {
			return fmt.Errorf("unable to add graph series %s: %w", name, err)
		}
	}
	time.Sleep(delay)
	return
}
