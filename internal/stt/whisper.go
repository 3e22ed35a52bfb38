package stt

import (
	"fmt"
	"regexp"
	"strings"

	whisperpkg "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/erikh/hoover/internal/chunk"
	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/models"
)

// noSpeechThreshold is not applied by Transcribe: the Go binding reports no
// per-segment no-speech probability, so whisper segments are never dropped
// on that basis here and every Utterance leaves with NoSpeechProb 0.
const noSpeechThreshold = 0.6

type whisperEngine struct {
	model    whisperpkg.Model
	language string
}

func newWhisperEngine(cfg *config.SttConfig) (Engine, error) {
	path, err := resolveWhisperModelPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}

	model, err := whisperpkg.New(path)
	if err != nil {
		return nil, fmt.Errorf("whisper: failed to load model %s: %w", path, err)
	}

	return &whisperEngine{model: model, language: cfg.Language}, nil
}

func (w *whisperEngine) Transcribe(c chunk.Chunk) ([]Utterance, error) {
	ctx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: failed to create context: %w", err)
	}

	if err := ctx.SetLanguage(w.language); err != nil {
		return nil, fmt.Errorf("whisper: failed to set language: %w", err)
	}

	samples := make([]float32, len(c.Samples))
	for i, s := range c.Samples {
		samples[i] = float32(s) / 32768.0
	}

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: transcription failed: %w", err)
	}

	var out []Utterance
	for {
		seg, err := ctx.NextSegment()
		if err != nil {
			break
		}

		text := strings.TrimSpace(seg.Text)
		if text == "" || looksHallucinatedNoise(text) {
			continue
		}

		out = append(out, Utterance{
			Text:         text,
			Timestamp:    c.Timestamp.Add(seg.Start),
			DurationSecs: float32((seg.End - seg.Start).Seconds()),
			NoSpeechProb: 0, // whisper.cpp's Go binding does not surface no_speech_prob per segment
		})
	}

	return out, nil
}

func (w *whisperEngine) Name() string { return "whisper" }

func (w *whisperEngine) Close() error { return w.model.Close() }

var hallucinationBracket = regexp.MustCompile(`^\[.*\]$|^\(.*\)$`)

// looksHallucinatedNoise catches the small set of stock phrases whisper
// tends to emit for percussive/mechanical non-speech audio. This is the
// backend-specific first pass; internal/hallucination runs a broader,
// backend-agnostic pass afterward.
func looksHallucinatedNoise(text string) bool {
	lower := strings.ToLower(text)
	if hallucinationBracket.MatchString(lower) {
		return true
	}
	if strings.Contains(lower, "thank you") && len(lower) < 30 {
		return true
	}
	if strings.Contains(lower, "thanks for watching") || strings.Contains(lower, "subscribe") {
		return true
	}
	return false
}

func resolveWhisperModelPath(cfg *config.SttConfig) (string, error) {
	if cfg.ModelPath != "" {
		return config.ExpandPath(cfg.ModelPath), nil
	}

	size := cfg.WhisperModelSize
	if size == "" {
		size = "base"
	}
	path := config.ExpandPath(fmt.Sprintf("~/.local/share/hoover/models/ggml-%s.en.bin", size))
	url := fmt.Sprintf("https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-%s.en.bin", size)
	if err := models.EnsureModel(path, url, fmt.Sprintf("Whisper %s model", size)); err != nil {
		return "", err
	}
	return path, nil
}
