package audio

import (
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/erikh/hoover/internal/ring"
)

// openWithResample is used when a device rejects sampleRate outright
// (some USB microphones only expose their native rate, e.g. 44100 or
// 48000); it captures at the device's default rate and resamples every
// callback down to sampleRate before pushing into the ring buffer.
func openWithResample(device *portaudio.DeviceInfo, sampleRate int, buf *ring.Buffer) (*Capture, error) {
	nativeRate := device.DefaultSampleRate

	resampler, err := resampling.NewResampler(nativeRate, float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("audio: failed to build resampler %v->%d: %w", nativeRate, sampleRate, err)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      nativeRate,
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, func(in []int16) {
		out, err := resampler.ResampleInt16(in)
		if err != nil {
			slog.Warn("resample failed, dropping buffer", "error", err)
			return
		}
		buf.Push(out)
	})
	if err != nil {
		return nil, fmt.Errorf("audio: failed to open resampled stream: %w", err)
	}

	slog.Info("opened capture device with resampling", "device", device.Name,
		"nativeRate", nativeRate, "targetRate", sampleRate)
	return &Capture{stream: stream, buf: buf}, nil
}
