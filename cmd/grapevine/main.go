package main

import (
	"fmt"
	"os"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// GlobalFlags are shared by every command
type GlobalFlags struct {
	Artifact string
	LogLevel string
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "grapevine",
	Short: "Grapevine step circuit tooling",
	Long: `grapevine compiles, inspects and exercises the grapevine IVC step circuit.

A chain alternates logic steps (one hop of a shared phrase between two users)
with chaff steps that carry no data, so the real chain length stays hidden.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(globalFlags.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		zerolog.SetGlobalLevel(level)
		logger.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Artifact, "artifact", "", "compiled circuit artifact (default: compile in process)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "info", "log level: debug|info|warn|error|disabled")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
