package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/audio"
	"github.com/erikh/hoover/internal/config"
)

func newDevicesCmd() *cobra.Command {
	var pick bool
	var set string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List or select the microphone input device",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := audio.ListDevices()
			if err != nil {
				return fatalf("failed to enumerate audio devices: %w", err)
			}

			if set != "" {
				return setDefaultDevice(set)
			}

			for i, d := range devices {
				marker := " "
				if pick && i == 0 {
					marker = "*"
				}
				fmt.Printf("%s [%d] %s (channels=%d, default_rate=%.0f)\n", marker, d.Index, d.Name, d.Channels, d.SampleRate)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "mark the device that would be picked by default")
	cmd.Flags().StringVar(&set, "set", "", "persist the named device as audio.device in the config file")
	return cmd
}

func setDefaultDevice(name string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fatalf("failed to load config: %w", err)
	}
	cfg.Audio.Device = name
	if err := writeConfig(cfgPath, cfg); err != nil {
		return err
	}
	fmt.Printf("set audio.device = %q in %s\n", name, cfgPath)
	return nil
}
