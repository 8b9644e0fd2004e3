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

	"github.com/notargets/treedg/DGSEM"
	"github.com/notargets/treedg/InputParameters"
	"github.com/notargets/treedg/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// BenchCmd represents the bench command
var BenchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time each stage of the residual evaluation",
	Long: `
Runs the residual of an input problem repeatedly on the selected backend and
reports the time spent in each stage.

treedg bench -I input.yaml --steps 100 --profile cpu`,
	Run: func(cmd *cobra.Command, args []string) {
		fileName, _ := cmd.Flags().GetString("inputConditionsFile")
		steps, _ := cmd.Flags().GetInt("steps")
		counters, _ := cmd.Flags().GetBool("counters")
		profileMode, _ := cmd.Flags().GetString("profile")
		ip, err := readInput(fileName)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		switch profileMode {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		case "":
		default:
			fmt.Printf("error: unknown profile %s, must be cpu or mem\n", profileMode)
			os.Exit(1)
		}
		var rep *BenchReport
		if rep, err = RunBench(ip, steps, counters); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		rep.Print()
	},
}

func init() {
	rootCmd.AddCommand(BenchCmd)
	BenchCmd.Flags().IntP("steps", "n", 10, "number of residual evaluations")
	BenchCmd.Flags().Bool("counters", false, "count CPU instructions of one evaluation")
	BenchCmd.Flags().String("profile", "", "write a cpu or mem profile to the current directory")
}

type BenchReport struct {
	Backend      string
	Steps        int
	StageTimes   [DGSEM.NumStages]time.Duration
	Total        time.Duration
	Instructions uint64 // Zero unless counted
	Mem          string
}

// RunBench evaluates the residual steps times, timing each stage separately.
func RunBench(ip *InputParameters.InputParameters, steps int, counters bool) (rep *BenchReport, err error) {
	var p *Problem
	if p, err = NewProblem(ip); err != nil {
		return
	}
	if err = p.selectBackend(); err != nil {
		return
	}
	var (
		sd = p.SD
		du = sd.NewSolution()
	)
	defer sd.Backend().Free()
	rep = &BenchReport{Backend: sd.Backend().Name(), Steps: steps}
	for step := 0; step < steps; step++ {
		if err = sd.Prepare(du, p.U, 0); err != nil {
			return
		}
		for stage := DGSEM.StageReset; stage < DGSEM.NumStages; stage++ {
			start := time.Now()
			if err = sd.RunStage(stage, 0); err != nil {
				return
			}
			rep.StageTimes[stage] += time.Since(start)
		}
		if err = sd.Fetch(du); err != nil {
			return
		}
	}
	for _, st := range rep.StageTimes {
		rep.Total += st
	}
	if counters {
		if rep.Instructions, err = countInstructions(func() error { return sd.RHS(du, p.U, 0) }); err != nil {
			return
		}
	}
	rep.Mem = utils.GetMemUsage()
	return
}

func (rep *BenchReport) Print() {
	fmt.Printf("Backend: %s, %d evaluations in %v\n", rep.Backend, rep.Steps, rep.Total)
	for stage, st := range rep.StageTimes {
		var share float64
		if rep.Total > 0 {
			share = 100 * float64(st) / float64(rep.Total)
		}
		fmt.Printf("%20s %14v %6.2f%%\n", DGSEM.Stage(stage), st/time.Duration(max(1, rep.Steps)), share)
	}
	if rep.Instructions > 0 {
		fmt.Printf("CPU instructions per evaluation: %d\n", rep.Instructions)
	}
	fmt.Println(rep.Mem)
}
