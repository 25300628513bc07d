package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/consensys/gnark/constraint"
	"github.com/spf13/cobra"

	"grapevine/circuits/grapevine"
	"grapevine/pkg/executor"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the step circuit and write the R1CS artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.Artifact == "" {
			return errors.New("--artifact is required")
		}
		start := time.Now()
		if err := grapevine.WriteArtifact(globalFlags.Artifact); err != nil {
			return err
		}
		fmt.Printf("wrote %s in %v\n", globalFlags.Artifact, time.Since(start))
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report constraint counts and an estimated proving time",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		exec, err := loadExecutor()
		if err != nil {
			return err
		}
		ccs := exec.ConstraintSystem()
		printAnalysis(ccs, time.Since(start))
		return nil
	},
}

func loadExecutor() (*executor.Grapevine, error) {
	if globalFlags.Artifact != "" {
		return executor.Load(globalFlags.Artifact)
	}
	return executor.Default()
}

func printAnalysis(ccs constraint.ConstraintSystem, took time.Duration) {
	constraints := ccs.GetNbConstraints()

	// Rule of thumb: ~10-20ms per 1000 constraints on modern hardware
	estimatedSeconds := float64(constraints) * 0.015 / 1000

	fmt.Println("=== Step Circuit Analysis ===")
	fmt.Printf("Constraints:      %d\n", constraints)
	fmt.Printf("Public wires:     %d (including the constant one)\n", ccs.GetNbPublicVariables())
	fmt.Printf("Secret wires:     %d\n", ccs.GetNbSecretVariables())
	fmt.Printf("Internal wires:   %d\n", ccs.GetNbInternalVariables())
	fmt.Printf("Load time:        %v\n", took)
	fmt.Printf("Est. prove time:  ~%.2fs per fold\n", estimatedSeconds)
}
