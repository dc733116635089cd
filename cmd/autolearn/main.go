// Command autolearn runs reinforcement learning experiments described
// by YAML configuration files.
//
//	autolearn run experiment.yaml
//	autolearn validate experiment.yaml
//	autolearn presets
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Algorithms register their preset types on import
	_ "github.com/samuelfneumann/autolearn/agent/dqn"
	_ "github.com/samuelfneumann/autolearn/agent/vac"
	_ "github.com/samuelfneumann/autolearn/agent/vsarsa"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "autolearn",
		Short:         "Run reinforcement learning experiments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				// A missing default .env file is not an error
				_ = godotenv.Load()
				return nil
			}
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("could not load %v: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "",
		"file of environment variables to load (default .env if present)")

	root.AddCommand(newRunCmd(), newValidateCmd(), newPresetsCmd())
	return root
}
