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

	"github.com/notargets/treedg/InputParameters"
	"github.com/notargets/treedg/treemesh"
	"github.com/notargets/treedg/types"
	"github.com/spf13/cobra"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Build and describe the tree mesh of an input file",
	Long: `
Builds the tree mesh of an input problem and prints its catalogs and the
partitioning of its elements.

treedg mesh -I input.yaml --partitions 4 --metis cut`,
	Run: func(cmd *cobra.Command, args []string) {
		fileName, _ := cmd.Flags().GetString("inputConditionsFile")
		partitions, _ := cmd.Flags().GetInt("partitions")
		objective, _ := cmd.Flags().GetString("metis")
		ip, err := readInput(fileName)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if partitions > 0 {
			ip.Partitions = partitions
		}
		var m *treemesh.Mesh
		if m, err = BuildMesh(ip, objective); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		PrintMesh(m, ip.PolynomialOrder)
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().IntP("partitions", "p", 0, "number of partitions, overrides the input file")
	MeshCmd.Flags().String("metis", "", "partition with METIS minimizing \"cut\" or \"vol\"")
}

// BuildMesh builds the mesh of ip, partitioned with METIS when an objective
// is given.
func BuildMesh(ip *InputParameters.InputParameters, objective string) (m *treemesh.Mesh, err error) {
	cfg := ip.MeshConfig()
	if len(objective) != 0 {
		if cfg.Partitioner, err = treemesh.NewMetisPartitioner(objective); err != nil {
			return
		}
	}
	return treemesh.New(cfg)
}

func PrintMesh(m *treemesh.Mesh, N int) {
	var (
		n   = N + 1
		np  = 1
		nfp = 1
	)
	for d := 0; d < m.Dimensions(); d++ {
		np *= n
		if d > 0 {
			nfp *= n
		}
	}
	fmt.Println(m.String())
	fmt.Printf("Nodes: %d per element, %d per face, %d total\n", np, nfp, np*m.NumElements())
	levels := make(map[int]int)
	for _, el := range m.Elements {
		levels[el.Level]++
	}
	for l := 0; l <= types.MaxCellLevel; l++ {
		if c, ok := levels[l]; ok {
			fmt.Printf("Level %2d: %d elements\n", l, c)
		}
	}
	ranges := m.PartitionRanges()
	if len(ranges) > 1 {
		fmt.Printf("%d partitions, %d cut faces\n", len(ranges), m.CutFaces())
		for p, r := range ranges {
			fmt.Printf("Partition %3d: elements [%d,%d)\n", p, r[0], r[1])
		}
	}
}
