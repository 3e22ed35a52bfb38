package speaker

import (
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/mel"
)

// Extractor runs a speaker-embedding ONNX model over log-mel features.
// The model's expected input rank (2: [frames, mel] or 3: [1, frames,
// mel]) is auto-detected from the loaded session's input shape, since
// speaker-embedding checkpoints in the wild disagree on whether they
// carry an explicit batch dimension.
type Extractor struct {
	modelPath  string
	frontend   *mel.Frontend
	inputRank  int
	outputDim  int64
	inputName  string
	outputName string
}

// NewExtractor loads the ONNX model at cfg.ModelPath, probing its
// input/output tensor shapes once up front. A fresh AdvancedSession is
// opened per Extract call because the input's frame-count dimension
// varies with utterance length; only the environment is process-global.
func NewExtractor(cfg *config.SpeakerConfig) (*Extractor, error) {
	path := config.ExpandPath(cfg.ModelPath)
	if path == "" {
		return nil, fmt.Errorf("speaker: speaker.model_path must be set")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("speaker: model not found at %s: %w", path, err)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("speaker: failed to initialize onnxruntime: %w", err)
	}

	inputInfo, outputInfo, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("speaker: failed to inspect model %s: %w", path, err)
	}
	if len(inputInfo) == 0 || len(outputInfo) == 0 {
		return nil, fmt.Errorf("speaker: model %s exposes no input/output tensors", path)
	}

	return &Extractor{
		modelPath:  path,
		frontend:   mel.New(),
		inputRank:  len(inputInfo[0].Dimensions),
		inputName:  inputInfo[0].Name,
		outputName: outputInfo[0].Name,
		outputDim:  outputInfo[0].Dimensions[len(outputInfo[0].Dimensions)-1],
	}, nil
}

// Extract computes an L2-normalized speaker embedding for samples.
func (e *Extractor) Extract(samples []int16) ([]float32, error) {
	frames := e.frontend.Compute(samples)
	if len(frames) == 0 {
		return nil, fmt.Errorf("speaker: audio too short to embed")
	}

	flat := make([]float32, 0, len(frames)*len(frames[0]))
	for _, f := range frames {
		flat = append(flat, f...)
	}

	var shape ort.Shape
	switch e.inputRank {
	case 3:
		shape = ort.NewShape(1, int64(len(frames)), int64(len(frames[0])))
	default:
		shape = ort.NewShape(int64(len(frames)), int64(len(frames[0])))
	}

	inputTensor, err := ort.NewTensor(shape, flat)
	if err != nil {
		return nil, fmt.Errorf("speaker: failed to build input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, e.outputDim))
	if err != nil {
		return nil, fmt.Errorf("speaker: failed to allocate output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	session, err := ort.NewAdvancedSession(
		e.modelPath,
		[]string{e.inputName}, []string{e.outputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor}, nil)
	if err != nil {
		return nil, fmt.Errorf("speaker: failed to create inference session: %w", err)
	}
	defer session.Destroy()

	if err := session.Run(); err != nil {
		return nil, fmt.Errorf("speaker: inference failed: %w", err)
	}

	embedding := append([]float32(nil), outputTensor.GetData()...)
	normalize(embedding)
	return embedding, nil
}

// Close releases the onnxruntime environment.
func (e *Extractor) Close() error {
	return ort.DestroyEnvironment()
}

// enrollSegmentSeconds is the fixed window enrollment recordings are cut
// into before embedding, independent of the pipeline's chunk_seconds.
const enrollSegmentSeconds = 3

// EnrollEmbedding computes an enrollment embedding by splitting samples
// into enrollSegmentSeconds windows, embedding each window independently,
// mean-pooling the per-segment embeddings, and L2-normalising the result —
// steadier than a single embedding over the whole recording, which can be
// skewed by a few seconds of breath noise or silence at either end.
func EnrollEmbedding(e *Extractor, samples []int16, sampleRate int) ([]float32, error) {
	segLen := enrollSegmentSeconds * sampleRate
	if segLen <= 0 || len(samples) < segLen {
		return nil, fmt.Errorf("speaker: enrollment recording too short to segment")
	}

	var sum []float32
	var count int
	for start := 0; start+segLen <= len(samples); start += segLen {
		emb, err := e.Extract(samples[start : start+segLen])
		if err != nil {
			return nil, fmt.Errorf("speaker: failed to embed enrollment segment %d: %w", count, err)
		}
		if sum == nil {
			sum = make([]float32, len(emb))
		}
		for i, v := range emb {
			sum[i] += v
		}
		count++
	}

	for i := range sum {
		sum[i] /= float32(count)
	}
	normalize(sum)
	return sum, nil
}
