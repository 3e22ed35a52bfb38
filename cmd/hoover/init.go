package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/audio"
	"github.com/erikh/hoover/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			reader := bufio.NewReader(cmd.InOrStdin())

			devices, err := audio.ListDevices()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not enumerate audio devices: %v\n", err)
			} else if len(devices) > 0 {
				fmt.Println("available input devices:")
				for _, d := range devices {
					fmt.Printf("  %s\n", d.Name)
				}
				cfg.Audio.Device = prompt(reader, "device name (blank = system default)", cfg.Audio.Device)
			}

			cfg.Output.JournalDir = prompt(reader, "journal directory", cfg.Output.JournalDir)
			cfg.Stt.Backend = prompt(reader, "stt backend (whisper/vosk/openai)", cfg.Stt.Backend)

			if askYesNo(reader, "enable speaker identification?", cfg.Speaker.Enabled) {
				cfg.Speaker.Enabled = true
				cfg.Speaker.ModelPath = prompt(reader, "speaker embedding model path", cfg.Speaker.ModelPath)
			}

			if err := writeConfig(cfgPath, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", cfgPath)
			return nil
		},
	}
}

func prompt(r *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func askYesNo(r *bufio.Reader, label string, def bool) bool {
	suffix := "y/N"
	if def {
		suffix = "Y/n"
	}
	fmt.Printf("%s [%s]: ", label, suffix)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	if line == "" {
		return def
	}
	if b, err := strconv.ParseBool(line); err == nil {
		return b
	}
	return line == "y" || line == "yes"
}

func writeConfig(path string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
