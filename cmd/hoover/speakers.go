package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/speaker"
)

func newSpeakersCmd() *cobra.Command {
	var remove string

	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "List or remove enrolled speaker profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fatalf("failed to load config: %w", err)
			}

			store, err := speaker.NewStore(config.ExpandPath(cfg.Speaker.ProfilesDir))
			if err != nil {
				return fatalf("failed to open speaker profile store: %w", err)
			}
			defer store.Close()

			if remove != "" {
				if err := store.Remove(remove); err != nil {
					return fatalf("failed to remove profile %q: %w", remove, err)
				}
				fmt.Printf("removed %q\n", remove)
				return nil
			}

			for _, p := range store.All() {
				fmt.Printf("%s\tupdates=%d\tdim=%d\n", p.Name, p.UpdateCount, len(p.Embedding))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&remove, "remove", "", "remove the named speaker profile")
	return cmd
}
