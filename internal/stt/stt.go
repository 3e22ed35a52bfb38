// Package stt defines the polymorphic speech-to-text backend contract and
// its three implementations (whisper-local, vosk-local, openai-remote),
// mirroring the SttEngine trait the reference implementation defines,
// one operation at a time.
package stt

import (
	"time"

	"github.com/erikh/hoover/internal/chunk"
	"github.com/erikh/hoover/internal/config"
)

// Utterance is one piece of recognized text with its position inside a
// chunk's audio.
type Utterance struct {
	Text         string
	Timestamp    time.Time
	DurationSecs float32
	NoSpeechProb float32 // 0 when the backend does not expose one
}

// Engine transcribes a fully-buffered audio chunk into zero or more
// utterances.
type Engine interface {
	Transcribe(c chunk.Chunk) ([]Utterance, error)
	Name() string
	Close() error
}

// New constructs the Engine named by cfg.Backend.
func New(cfg *config.SttConfig) (Engine, error) {
	switch cfg.Backend {
	case "vosk":
		return newVoskEngine(cfg)
	case "openai":
		return newOpenAIEngine(cfg)
	case "whisper", "":
		return newWhisperEngine(cfg)
	default:
		return nil, &UnknownBackendError{Backend: cfg.Backend}
	}
}

// UnknownBackendError is returned by New for an unrecognized backend name.
type UnknownBackendError struct{ Backend string }

func (e *UnknownBackendError) Error() string {
	return "stt: unknown backend " + e.Backend
}
