package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/vcs"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Manually commit and push the journal directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fatalf("failed to load config: %w", err)
			}
			if !cfg.Vcs.Enabled {
				return fatalf("vcs.enabled is false in %s", cfgPath)
			}

			hook := vcs.New(&cfg.Vcs, cfg.Output.JournalDir)
			vcs.Flush(hook, fmt.Sprintf("manual push %s", time.Now().Format(time.RFC3339)))
			return nil
		},
	}
}
