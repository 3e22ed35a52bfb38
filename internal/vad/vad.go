// Package vad wraps the Silero voice-activity-detection ONNX model to
// give the pipeline an early, cheap "is there speech here at all" signal
// ahead of the far more expensive STT/speaker inference. It yields only a
// yes/no answer per chunk; it does not set an utterance's NoSpeechProb or
// otherwise pass a confidence value to the Hallucination Filter.
package vad

import (
	"fmt"

	sileroVad "github.com/streamer45/silero-vad-go/speech"

	"github.com/erikh/hoover/internal/config"
)

// Detector wraps a Silero VAD session.
type Detector struct {
	detector *sileroVad.Detector
}

// New builds a Detector for 16kHz mono audio.
func New(modelPath string) (*Detector, error) {
	d, err := sileroVad.NewDetector(sileroVad.DetectorConfig{
		ModelPath:            config.ExpandPath(modelPath),
		SampleRate:           16000,
		Threshold:            0.5,
		MinSilenceDurationMs: 300,
		SpeechPadMs:          30,
	})
	if err != nil {
		return nil, fmt.Errorf("vad: failed to load model: %w", err)
	}
	return &Detector{detector: d}, nil
}

// ContainsSpeech reports whether any speech segment was detected in samples.
func (d *Detector) ContainsSpeech(samples []int16) (bool, error) {
	pcm := make([]float32, len(samples))
	for i, s := range samples {
		pcm[i] = float32(s) / 32768.0
	}

	segments, err := d.detector.Detect(pcm)
	if err != nil {
		return false, fmt.Errorf("vad: detection failed: %w", err)
	}
	return len(segments) > 0, nil
}

// Close releases the underlying ONNX session.
func (d *Detector) Close() error {
	return d.detector.Destroy()
}
