package main

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/erikh/hoover/internal/audio"
	"github.com/erikh/hoover/internal/herr"
	"github.com/erikh/hoover/internal/ring"
	"github.com/erikh/hoover/internal/transport"
)

func newSendCmd() *cobra.Command {
	var file string
	var keyFile string
	var sampleRate int
	var rotateEvery time.Duration

	cmd := &cobra.Command{
		Use:   "send <host:port>",
		Short: "Stream encrypted audio to a remote hoover instance's UDP receiver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyFile == "" {
				return fatalf("--key-file is required")
			}
			key, err := loadRawKey(keyFile)
			if err != nil {
				return err
			}

			sender, err := transport.Dial(args[0], key)
			if err != nil {
				return err
			}
			defer sender.Close()

			var samples []int16
			if file != "" {
				samples, err = audio.LoadWavSamples(file)
				if err != nil {
					return err
				}
				return sendInFrames(sender, samples)
			}

			return sendLive(sender, sampleRate, rotateEvery)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "send a WAV file instead of live microphone audio")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "path to the raw 32-byte AES-256 key file (required)")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 16000, "sample rate of the audio being sent")
	cmd.Flags().DurationVar(&rotateEvery, "rotate-every", 0,
		"rotate the frame key on this interval (requires udp.rotation_enabled on the receiver); 0 disables rotation")
	return cmd
}

// maxPlaintextFrame keeps each sealed UDP datagram at or below a
// 1200-byte plaintext budget (one message-type byte plus two bytes per
// sample), well under typical path MTU after the AES-GCM nonce, serial
// and tag overhead.
const maxPlaintextFrame = (1200 - 1) / 2

func sendInFrames(sender *transport.Sender, samples []int16) error {
	for i := 0; i < len(samples); i += maxPlaintextFrame {
		end := i + maxPlaintextFrame
		if end > len(samples) {
			end = len(samples)
		}
		if err := sender.SendAudio(samples[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func sendLive(sender *transport.Sender, sampleRate int, rotateEvery time.Duration) error {
	buf := ring.New(sampleRate * 2)
	capture, err := audio.Open("", sampleRate, buf)
	if err != nil {
		return herr.Wrap(herr.KindAudioDeviceLost, "send.sendLive", err)
	}
	defer capture.Close()

	if err := capture.Start(); err != nil {
		return herr.Wrap(herr.KindAudioDeviceLost, "send.sendLive", err)
	}
	defer capture.Stop()

	fmt.Println("streaming live audio, press Ctrl+C to stop")
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var rotate <-chan time.Time
	if rotateEvery > 0 {
		rotateTicker := time.NewTicker(rotateEvery)
		defer rotateTicker.Stop()
		rotate = rotateTicker.C
	}

	for {
		select {
		case <-ticker.C:
			samples := buf.Drain()
			if len(samples) == 0 {
				continue
			}
			if err := sendInFrames(sender, samples); err != nil {
				return err
			}
		case <-rotate:
			if err := rotateKey(sender); err != nil {
				slog.Warn("key rotation failed, continuing under the current key", "error", err)
			}
		}
	}
}

func rotateKey(sender *transport.Sender) error {
	newKey := make([]byte, transport.KeySize)
	if _, err := rand.Read(newKey); err != nil {
		return fmt.Errorf("failed to generate new key: %w", err)
	}
	if err := sender.RotateKey(newKey, 5*time.Second); err != nil {
		return err
	}
	slog.Info("rotated udp frame key")
	return nil
}

func loadRawKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, herr.Wrap(herr.KindInvalidKey, "send.loadRawKey", err)
	}
	if len(data) != 32 {
		return nil, herr.Wrap(herr.KindInvalidKey, "send.loadRawKey", fmt.Errorf("key file must be exactly 32 raw bytes, got %d", len(data)))
	}
	return data, nil
}
