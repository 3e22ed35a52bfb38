package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/pipeline"
)

func newRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Continuously capture, transcribe and journal microphone audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fatalf("failed to load config: %w", err)
			}

			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return p.Run(ctx)
		},
	}
}
