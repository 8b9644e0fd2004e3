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

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treedg",
	Short: "Discontinuous Galerkin spectral element residuals on tree meshes",
	Long: `
Evaluates the semi-discrete residual of a DGSEM discretization on a
hierarchical Cartesian mesh, on a reference, a multithreaded or an OCCA
accelerated backend.

treedg rhs -I input.yaml`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.treedg.yaml)")
	rootCmd.PersistentFlags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters")
	rootCmd.PersistentFlags().String("backend", "", "backend to run: reference, serial, parallel or occa")
	rootCmd.PersistentFlags().Int("threads", 0, "threads of the parallel backend, 0 uses every CPU")
	rootCmd.PersistentFlags().String("device", `{"mode": "Serial"}`, "OCCA device properties")
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("threads", rootCmd.PersistentFlags().Lookup("threads"))
	_ = viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".treedg" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".treedg")
	}
	viper.SetEnvPrefix("treedg")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
