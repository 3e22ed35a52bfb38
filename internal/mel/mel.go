// Package mel implements a Kaldi-compatible 80-dimensional log-Mel
// filterbank frontend: pre-emphasis, framing, a Hamming window, an FFT
// delegated to gonum, triangular mel filters, and per-utterance mean
// normalization.
package mel

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	numFilters   = 80
	fftSize      = 512
	sampleRate   = 16000
	frameMs      = 25
	hopMs        = 10
	preEmphasis  = 0.97
	lowFreqHz    = 20.0
	highFreqHz   = 7600.0
	logFloor     = 1e-10
)

// Frontend computes log-mel feature frames from raw int16 PCM.
type Frontend struct {
	fft     *fourier.FFT
	filters [][]float64 // [numFilters][fftSize/2+1]
	window  []float64
}

// New builds a Frontend for 16kHz mono audio.
func New() *Frontend {
	frameLen := sampleRate * frameMs / 1000
	f := &Frontend{
		fft:     fourier.NewFFT(fftSize),
		filters: buildFilterbank(),
		window:  hammingWindow(frameLen),
	}
	return f
}

// Compute returns one 80-dim log-mel vector per frame, mean-normalized
// across the whole utterance.
func (f *Frontend) Compute(samples []int16) [][]float32 {
	frameLen := sampleRate * frameMs / 1000
	hopLen := sampleRate * hopMs / 1000
	if len(samples) < frameLen {
		return nil
	}

	pcm := make([]float64, len(samples))
	for i, s := range samples {
		pcm[i] = float64(s) / 32768.0
	}
	emph := preEmphasize(pcm)

	var frames [][]float64
	for start := 0; start+frameLen <= len(emph); start += hopLen {
		frame := make([]float64, fftSize)
		for i := 0; i < frameLen; i++ {
			frame[i] = emph[start+i] * f.window[i]
		}
		frames = append(frames, frame)
	}

	feats := make([][]float32, len(frames))
	sums := make([]float64, numFilters)
	for fi, frame := range frames {
		spectrum := f.fft.Coefficients(nil, frame)
		power := make([]float64, fftSize/2+1)
		for i := range power {
			re, im := real(spectrum[i]), imag(spectrum[i])
			power[i] = re*re + im*im
		}

		vec := make([]float32, numFilters)
		for m := 0; m < numFilters; m++ {
			var energy float64
			for i, w := range f.filters[m] {
				energy += w * power[i]
			}
			if energy < logFloor {
				energy = logFloor
			}
			lg := math.Log(energy)
			vec[m] = float32(lg)
			sums[m] += lg
		}
		feats[fi] = vec
	}

	if len(feats) == 0 {
		return feats
	}
	means := make([]float32, numFilters)
	for m := range means {
		means[m] = float32(sums[m] / float64(len(feats)))
	}
	for _, vec := range feats {
		for m := range vec {
			vec[m] -= means[m]
		}
	}
	return feats
}

func preEmphasize(pcm []float64) []float64 {
	out := make([]float64, len(pcm))
	if len(pcm) == 0 {
		return out
	}
	out[0] = pcm[0]
	for i := 1; i < len(pcm); i++ {
		out[i] = pcm[i] - preEmphasis*pcm[i-1]
	}
	return out
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// buildFilterbank constructs numFilters triangular filters spaced evenly
// on the mel scale between lowFreqHz and highFreqHz, each a weight vector
// over the fftSize/2+1 real-FFT bins.
func buildFilterbank() [][]float64 {
	nBins := fftSize/2 + 1
	lowMel := hzToMel(lowFreqHz)
	highMel := hzToMel(highFreqHz)

	points := make([]float64, numFilters+2)
	for i := range points {
		mel := lowMel + (highMel-lowMel)*float64(i)/float64(numFilters+1)
		points[i] = melToHz(mel)
	}

	binFreq := func(bin int) float64 {
		return float64(bin) * sampleRate / fftSize
	}

	filters := make([][]float64, numFilters)
	for m := 0; m < numFilters; m++ {
		left, center, right := points[m], points[m+1], points[m+2]
		filter := make([]float64, nBins)
		for b := 0; b < nBins; b++ {
			f := binFreq(b)
			switch {
			case f < left || f > right:
				filter[b] = 0
			case f <= center:
				if center == left {
					filter[b] = 0
				} else {
					filter[b] = (f - left) / (center - left)
				}
			default:
				if right == center {
					filter[b] = 0
				} else {
					filter[b] = (right - f) / (right - center)
				}
			}
		}
		filters[m] = filter
	}
	return filters
}
