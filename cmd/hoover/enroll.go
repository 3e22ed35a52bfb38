package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/audio"
	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/herr"
	"github.com/erikh/hoover/internal/ring"
	"github.com/erikh/hoover/internal/speaker"
)

// minEnrollSeconds enforces a 3-second floor for an enrollment recording,
// below which MissingAudio aborts the command.
const minEnrollSeconds = 3

func newEnrollCmd() *cobra.Command {
	var file string
	var seconds int

	cmd := &cobra.Command{
		Use:   "enroll <name>",
		Short: "Enroll or refine a speaker profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fatalf("failed to load config: %w", err)
			}

			var samples []int16
			if file != "" {
				samples, err = audio.LoadWavSamples(file)
				if err != nil {
					return err
				}
			} else {
				if seconds < minEnrollSeconds {
					return herr.Wrap(herr.KindMissingAudio, "enroll",
						fmt.Errorf("enrollment recording must be at least %ds, got %ds", minEnrollSeconds, seconds))
				}
				samples, err = captureSeconds(cfg, seconds)
				if err != nil {
					return err
				}
			}

			minSamples := minEnrollSeconds * cfg.Audio.SampleRate
			if len(samples) < minSamples {
				return herr.Wrap(herr.KindMissingAudio, "enroll",
					fmt.Errorf("enrollment recording decoded to %d samples, need at least %d", len(samples), minSamples))
			}

			store, err := speaker.NewStore(config.ExpandPath(cfg.Speaker.ProfilesDir))
			if err != nil {
				return fatalf("failed to open speaker profile store: %w", err)
			}
			defer store.Close()

			extractor, err := speaker.NewExtractor(&cfg.Speaker)
			if err != nil {
				return err
			}
			defer extractor.Close()

			profile, err := speaker.Enroll(store, extractor, name, samples, cfg.Audio.SampleRate, cfg.Speaker.EmaAlpha)
			if err != nil {
				return err
			}

			fmt.Printf("enrolled %q (update_count=%d)\n", profile.Name, profile.UpdateCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "enroll from a WAV file instead of live capture")
	cmd.Flags().IntVar(&seconds, "seconds", 6, "seconds of live audio to capture for enrollment")
	return cmd
}

func captureSeconds(cfg *config.Config, seconds int) ([]int16, error) {
	buf := ring.New(cfg.Audio.SampleRate * (seconds + 2))
	capture, err := audio.Open(cfg.Audio.Device, cfg.Audio.SampleRate, buf)
	if err != nil {
		return nil, herr.Wrap(herr.KindAudioDeviceLost, "enroll.captureSeconds", err)
	}
	defer capture.Close()

	if err := capture.Start(); err != nil {
		return nil, herr.Wrap(herr.KindAudioDeviceLost, "enroll.captureSeconds", err)
	}
	fmt.Printf("recording %ds of audio for enrollment...\n", seconds)
	time.Sleep(time.Duration(seconds) * time.Second)
	capture.Stop()

	return buf.Drain(), nil
}
