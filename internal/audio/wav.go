package audio

import (
	"fmt"
	"os"

	"github.com/youpy/go-wav"
)

// LoadWavSamples decodes a 16-bit mono WAV file into PCM samples, shared
// by enroll-from-file and the UDP transport's "send --file" path. Delegates
// to the go-wav decoder rather than reimplementing RIFF parsing by hand.
func LoadWavSamples(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := wav.NewReader(f)
	var samples []int16
	for {
		s, err := reader.ReadSamples()
		if err != nil {
			break
		}
		for _, sample := range s {
			samples = append(samples, int16(reader.IntValue(sample, 0)))
		}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("audio: no samples decoded from %s", path)
	}
	return samples, nil
}
