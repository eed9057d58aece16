package envelope

import (
	"math"
	"os"

	"github.com/go-audio/wav"
)

// Sample is one second of loudness: the RMS amplitude of a non-overlapping
// 1-second window, in the source sample scale (int16 amplitude units for
// typical WAV input).
type Sample struct {
	SecondIndex int
	RMS         float64
}

// Series decodes a WAV file and returns its per-second RMS series. The
// result is empty when the file is missing, unreadable, or not a valid WAV;
// a read failure never yields partial output.
func Series(path string) []Sample {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil || buf == nil || buf.Format == nil {
		return nil
	}
	mono := downmix(buf.Data, buf.Format.NumChannels)
	return FromSamples(mono, buf.Format.SampleRate)
}

// FromSamples computes the per-second RMS series for already-decoded mono
// samples. A trailing partial window is included only when it has at least
// one frame.
func FromSamples(samples []float64, sampleRate int) []Sample {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil
	}
	out := make([]Sample, 0, len(samples)/sampleRate+1)
	for start, second := 0, 0; start < len(samples); start, second = start+sampleRate, second+1 {
		end := start + sampleRate
		if end > len(samples) {
			end = len(samples)
		}
		out = append(out, Sample{SecondIndex: second, RMS: rms(samples[start:end])})
	}
	return out
}

// Max returns the largest RMS value in the series, or 0 for an empty series.
func Max(series []Sample) float64 {
	max := 0.0
	for _, sample := range series {
		if sample.RMS > max {
			max = sample.RMS
		}
	}
	return max
}

func downmix(data []int, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out
	}
	frames := len(data) / channels
	out := make([]float64, 0, frames)
	for frame := 0; frame < frames; frame++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(data[frame*channels+ch])
		}
		out = append(out, sum/float64(channels))
	}
	return out
}

func rms(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range window {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(window)))
}
