package analysis

import (
	"math"
	"sort"
)

// Novelty measures how much the energy envelope changes at each frame,
// in either direction. Section changes show up as sustained shifts, so
// the absolute flux is smoothed before peak picking.
func Novelty(env []float64) []float64 {
	if len(env) == 0 {
		return nil
	}

	novelty := make([]float64, len(env))
	for i := 1; i < len(env); i++ {
		novelty[i] = math.Abs(env[i] - env[i-1])
	}
	return movingAverage(novelty, 9)
}

// SegmentBoundaries picks up to targetSections-1 boundary times from
// the novelty curve, keeping boundaries at least minSpacing seconds
// apart. Returned times are sorted ascending and exclude 0 and the end.
func SegmentBoundaries(novelty []float64, sampleRate, hopSize, targetSections int, minSpacing float64) []float64 {
	if targetSections < 2 || len(novelty) == 0 {
		return nil
	}

	frameRate := float64(sampleRate) / float64(hopSize)
	minDistance := int(frameRate * minSpacing)
	if minDistance < 1 {
		minDistance = 1
	}

	peaks := FindPeaks(novelty, 0, minDistance)
	if len(peaks) == 0 {
		return nil
	}

	// Keep the strongest targetSections-1 boundaries
	sort.Slice(peaks, func(a, b int) bool {
		return novelty[peaks[a]] > novelty[peaks[b]]
	})
	if len(peaks) > targetSections-1 {
		peaks = peaks[:targetSections-1]
	}
	sort.Ints(peaks)

	times := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		times = append(times, FrameTime(p, sampleRate, hopSize))
	}
	return times
}

// FindEnergyPeaks returns the times of loudness peaks: local maxima of
// the envelope above thresholdRatio times its mean, at least
// minSpacing seconds apart. These mark potential chorus or drop
// sections.
func FindEnergyPeaks(env []float64, sampleRate, hopSize int, thresholdRatio, minSpacing float64) []float64 {
	if len(env) == 0 {
		return nil
	}

	frameRate := float64(sampleRate) / float64(hopSize)
	minDistance := int(frameRate * minSpacing)

	threshold := Mean(env) * thresholdRatio
	peaks := FindPeaks(env, threshold, minDistance)

	times := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		times = append(times, FrameTime(p, sampleRate, hopSize))
	}
	return times
}
