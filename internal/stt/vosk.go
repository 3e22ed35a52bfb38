package stt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/erikh/hoover/internal/chunk"
	"github.com/erikh/hoover/internal/config"
)

type voskEngine struct {
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

func newVoskEngine(cfg *config.SttConfig) (Engine, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("vosk: stt.model_path must be set")
	}
	path := config.ExpandPath(cfg.ModelPath)

	model, err := vosk.NewModel(path)
	if err != nil {
		return nil, fmt.Errorf("vosk: failed to load model %s: %w", path, err)
	}

	recognizer, err := vosk.NewRecognizer(model, 16000.0)
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("vosk: failed to create recognizer: %w", err)
	}

	return &voskEngine{model: model, recognizer: recognizer}, nil
}

type voskResult struct {
	Text string `json:"text"`
}

func (v *voskEngine) Transcribe(c chunk.Chunk) ([]Utterance, error) {
	pcm := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	v.recognizer.AcceptWaveform(pcm)
	raw := v.recognizer.FinalResult()

	var res voskResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("vosk: failed to parse result: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return nil, nil
	}

	return []Utterance{{
		Text:         text,
		Timestamp:    c.Timestamp,
		DurationSecs: float32(len(c.Samples)) / 16000.0,
	}}, nil
}

func (v *voskEngine) Name() string { return "vosk" }

func (v *voskEngine) Close() error {
	v.recognizer.Free()
	v.model.Free()
	return nil
}
