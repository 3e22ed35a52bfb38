package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/erikh/hoover/internal/chunk"
	"github.com/erikh/hoover/internal/config"
)

type openaiEngine struct {
	client   openai.Client
	model    string
	language string
}

func newOpenAIEngine(cfg *config.SttConfig) (Engine, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai: stt.openai_api_key must be set")
	}
	model := cfg.OpenAIModel
	if model == "" {
		model = "whisper-1"
	}
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	return &openaiEngine{client: client, model: model, language: cfg.Language}, nil
}

func (o *openaiEngine) Transcribe(c chunk.Chunk) ([]Utterance, error) {
	wavData := encodeWav16kMono(c.Samples)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           bytes.NewReader(wavData),
		Model:          openai.F(o.model),
		Language:       openai.F(o.language),
		ResponseFormat: openai.F(openai.AudioTranscriptionNewParamsResponseFormatVerboseJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: transcription request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, nil
	}

	if len(resp.Words) > 0 {
		out := make([]Utterance, 0, len(resp.Words))
		for _, w := range resp.Words {
			out = append(out, Utterance{
				Text:         w.Word,
				Timestamp:    c.Timestamp.Add(time.Duration(w.Start * float64(time.Second))),
				DurationSecs: float32(w.End - w.Start),
			})
		}
		return out, nil
	}

	return []Utterance{{
		Text:         text,
		Timestamp:    c.Timestamp,
		DurationSecs: float32(len(c.Samples)) / 16000.0,
	}}, nil
}

func (o *openaiEngine) Name() string { return "openai" }

func (o *openaiEngine) Close() error { return nil }

// encodeWav16kMono writes a minimal 16-bit mono 16kHz WAV in memory using
// the standard 44-byte RIFF/WAVE header layout.
func encodeWav16kMono(samples []int16) []byte {
	dataSize := uint32(len(samples) * 2)
	buf := new(bytes.Buffer)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, dataSize+36)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(16000))
	binary.Write(buf, binary.LittleEndian, uint32(16000*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}
