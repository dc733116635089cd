package main

import (
	"fmt"

	"github.com/samuelfneumann/autolearn/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <experiment.yaml>",
		Short: "Check an experiment file and the hyperparameters of its agents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			jobs, err := c.Jobs(zap.NewNop())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%v: %d agents, %d environments, %d runs\n",
				args[0], len(c.Agents), len(c.Environments), len(jobs))
			return nil
		},
	}
}
