// Package analysis extracts timing features from decoded PCM samples:
// RMS energy envelope, onset strength, onsets, tempo, energy peaks and
// section boundaries. All routines are deterministic and operate on
// mono samples in [-1, 1].
package analysis

import (
	"math"

	"github.com/marcw/timing-analyze/internal/domain"
)

// Envelope computes the framed RMS energy of the samples. Frames are
// taken every hopSize samples; the final partial frame is included.
func Envelope(samples []float64, frameSize, hopSize int) []float64 {
	if len(samples) == 0 || frameSize <= 0 || hopSize <= 0 {
		return nil
	}

	numFrames := 1 + (len(samples)-1)/hopSize
	env := make([]float64, 0, numFrames)

	for start := 0; start < len(samples); start += hopSize {
		end := start + frameSize
		if end > len(samples) {
			end = len(samples)
		}

		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		env = append(env, math.Sqrt(sum/float64(end-start)))
	}

	return env
}

// Mean returns the arithmetic mean of the values, zero for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// FrameTime converts a frame index to seconds.
func FrameTime(frame int, sampleRate, hopSize int) float64 {
	return float64(frame) * float64(hopSize) / float64(sampleRate)
}

// PerSecondEnergy builds the second-by-second RMS table: for every
// whole second of the duration, the RMS value of the closest frame.
func PerSecondEnergy(env []float64, sampleRate, hopSize int, duration float64) []domain.EnergySample {
	if len(env) == 0 || duration <= 0 {
		return nil
	}

	frameRate := float64(sampleRate) / float64(hopSize)
	seconds := int(duration) + 1

	table := make([]domain.EnergySample, 0, seconds)
	for second := 0; second < seconds; second++ {
		frame := int(math.Round(float64(second) * frameRate))
		if frame >= len(env) {
			frame = len(env) - 1
		}
		table = append(table, domain.EnergySample{Second: second, RMS: env[frame]})
	}

	return table
}

// movingAverage smooths values with a centered window.
func movingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		return values
	}

	half := window / 2
	smoothed := make([]float64, len(values))
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(values) {
			hi = len(values)
		}
		smoothed[i] = Mean(values[lo:hi])
	}
	return smoothed
}
