package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrShortTrace = errors.New("analysis: trace too short")

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Spectrum returns the one-sided magnitude spectrum of data with its mean
// removed, and the frequency of each bin.
func Spectrum(data []float64, sampleRate float64) (freqs, magnitude []float64) {
	n := len(data)
	if n < 2 {
		return nil, nil
	}

	m := mean(data)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - m
	}

	spectrum := fft.FFTReal(centered)
	bins := n/2 + 1
	freqs = make([]float64, bins)
	magnitude = make([]float64, bins)
	for i := 0; i < bins; i++ {
		freqs[i] = float64(i) * sampleRate / float64(n)
		magnitude[i] = cmplx.Abs(spectrum[i]) / float64(n)
	}
	return freqs, magnitude
}

// DominantFrequency returns the frequency of the strongest non-DC bin. A
// flat trace has no dominant frequency and reports 0.
func DominantFrequency(data []float64, sampleRate float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrShortTrace
	}
	freqs, mag := Spectrum(data, sampleRate)

	best := 0
	for i := 1; i < len(mag); i++ {
		if mag[i] > mag[best] || best == 0 {
			best = i
		}
	}
	if mag[best] < 1e-12 {
		return 0, nil
	}
	return freqs[best], nil
}

type Summary struct {
	Min      float64
	Max      float64
	Mean     float64
	RMS      float64
	Dominant float64
	Samples  int
}

func Summarize(data []float64, sampleRate float64) (Summary, error) {
	if len(data) == 0 {
		return Summary{}, ErrShortTrace
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1), Samples: len(data)}
	sq := 0.0
	for _, v := range data {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sq += v * v
	}
	s.Mean = mean(data)
	s.RMS = math.Sqrt(sq / float64(len(data)))

	if len(data) >= 4 {
		hz, err := DominantFrequency(data, sampleRate)
		if err != nil {
			return s, err
		}
		s.Dominant = hz
	}
	return s, nil
}

// Overshoot is how far data went past its final value, relative to the
// distance travelled from the first value. 0 when it never passed.
func Overshoot(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	first, final := data[0], data[len(data)-1]
	travel := final - first
	if travel == 0 {
		return 0
	}

	worst := 0.0
	for _, v := range data {
		if past := (v - final) / travel; past > worst {
			worst = past
		}
	}
	return worst
}
