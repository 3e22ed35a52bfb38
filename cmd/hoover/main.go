// Command hoover captures microphone audio, transcribes it, optionally
// tags speaker identity, and appends the results to daily markdown logs.
// The command surface is a cobra subcommand tree covering the tool's full
// operation set (record/enroll/speakers/devices/init/push/trigger/send/mcp/completions).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/herr"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "hoover",
		Short:         "Continuous microphone transcription with speaker tagging",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRecordCmd(),
		newEnrollCmd(),
		newSpeakersCmd(),
		newDevicesCmd(),
		newInitCmd(),
		newPushCmd(),
		newTriggerCmd(),
		newSendCmd(),
		newMcpCmd(),
		newCompletionsCmd(root),
	)

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(herr.KindOf(err).ExitCode())
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hoover.yaml"
	}
	return filepath.Join(home, ".config", "hoover", "config.yaml")
}

func fatalf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
