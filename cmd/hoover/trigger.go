package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/forge"
)

func newTriggerCmd() *cobra.Command {
	var workflow, ref string

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Dispatch a CI workflow run on the configured forge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fatalf("failed to load config: %w", err)
			}
			return forge.Trigger(context.Background(), &cfg.Vcs, workflow, ref)
		},
	}

	cmd.Flags().StringVar(&workflow, "workflow", "journal.yml", "workflow file name to dispatch")
	cmd.Flags().StringVar(&ref, "ref", "main", "git ref to run the workflow against")
	return cmd
}
