package match

import (
	"context"
	"errors"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"songscout/internal/media"
)

const (
	embeddingSampleRate = 11025
	embeddingFrameSize  = 4096
)

// SpectralExtractor summarizes an interval as averaged spectral band
// energies: the interval is decoded to mono PCM, split into non-overlapping
// FFT frames, and the magnitude spectrum of each frame is folded into a
// fixed number of linear bands. The result is L2-normalized so cosine
// similarity compares shape, not level.
type SpectralExtractor struct {
	Tools *media.Tools
	Bands int
}

// Extract computes the interval embedding. It fails when the audio cannot be
// decoded or the interval is too short for a single frame.
func (e *SpectralExtractor) Extract(ctx context.Context, path string, startSec, endSec float64) ([]float64, error) {
	if e.Tools == nil || e.Bands <= 0 {
		return nil, errors.New("spectral extractor not configured")
	}
	if endSec <= startSec {
		return nil, errors.New("empty interval")
	}
	pcm, err := e.Tools.ExtractPCM(ctx, path, startSec, endSec-startSec, embeddingSampleRate)
	if err != nil {
		return nil, err
	}
	samples := media.DecodePCM16(pcm)
	if len(samples) < embeddingFrameSize {
		return nil, errors.New("interval shorter than one analysis frame")
	}

	bands := make([]float64, e.Bands)
	frames := 0
	bins := embeddingFrameSize / 2
	binsPerBand := bins / e.Bands
	if binsPerBand == 0 {
		binsPerBand = 1
	}
	for offset := 0; offset+embeddingFrameSize <= len(samples); offset += embeddingFrameSize {
		spectrum := fft.FFTReal(samples[offset : offset+embeddingFrameSize])
		for bin := 0; bin < bins; bin++ {
			band := bin / binsPerBand
			if band >= e.Bands {
				band = e.Bands - 1
			}
			bands[band] += cmplxAbs(spectrum[bin])
		}
		frames++
	}
	if frames == 0 {
		return nil, errors.New("no analysis frames")
	}
	for i := range bands {
		bands[i] /= float64(frames)
	}
	return l2Normalize(bands), nil
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func l2Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}
