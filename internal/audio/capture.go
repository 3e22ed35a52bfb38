// Package audio wraps portaudio for microphone capture and device
// enumeration. The energy-based transmission gating an earlier client-side
// design used is not carried forward here — the ring buffer accepts
// everything and the hallucination filter/VAD stages downstream decide
// what is worth keeping, rather than a client-side amplitude heuristic
// dropping audio before it is ever buffered.
package audio

import (
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"github.com/erikh/hoover/internal/ring"
)

const framesPerBuffer = 1024

// Capture drives a portaudio input stream into a ring.Buffer.
type Capture struct {
	stream *portaudio.Stream
	buf    *ring.Buffer
}

// Device describes one enumerated input device.
type Device struct {
	Index      int
	Name       string
	Channels   int
	SampleRate float64
}

// ListDevices returns every portaudio device with at least one input
// channel.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audio: failed to enumerate devices: %w", err)
	}

	var out []Device
	for i, d := range devices {
		if d.MaxInputChannels == 0 {
			continue
		}
		out = append(out, Device{
			Index:      i,
			Name:       d.Name,
			Channels:   d.MaxInputChannels,
			SampleRate: d.DefaultSampleRate,
		})
	}
	return out, nil
}

// Open starts capturing from the named device (or the system default when
// deviceName is empty) at sampleRate into buf. Samples are resampled to
// sampleRate only when the device's native rate differs; portaudio itself
// is asked to run at sampleRate directly wherever the device supports it,
// which covers the common 16kHz-capable-microphone case without needing
// the resampler at all.
func Open(deviceName string, sampleRate int, buf *ring.Buffer) (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: failed to initialize portaudio: %w", err)
	}

	device, err := resolveDevice(deviceName)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, func(in []int16) {
		buf.Push(in)
	})
	if err != nil {
		slog.Warn("device rejected requested sample rate, falling back to native rate + resampler",
			"device", device.Name, "requestedRate", sampleRate, "error", err)
		fallback, rerr := openWithResample(device, sampleRate, buf)
		if rerr != nil {
			portaudio.Terminate()
			return nil, fmt.Errorf("audio: failed to open stream: %w", err)
		}
		return fallback, nil
	}

	slog.Info("opened capture device", "device", device.Name, "sampleRate", sampleRate)
	return &Capture{stream: stream, buf: buf}, nil
}

func resolveDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audio: failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("audio: no input device named %q", name)
}

// Start begins streaming into the ring buffer.
func (c *Capture) Start() error { return c.stream.Start() }

// Stop halts the stream without releasing portaudio resources.
func (c *Capture) Stop() error { return c.stream.Stop() }

// Close stops the stream and releases portaudio.
func (c *Capture) Close() error {
	err := c.stream.Close()
	portaudio.Terminate()
	return err
}
