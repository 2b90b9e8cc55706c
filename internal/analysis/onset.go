package analysis

import (
	"sort"
)

// OnsetStrength computes a half-wave rectified energy flux over the RMS
// envelope: only rises contribute, the way note beginnings do.
func OnsetStrength(env []float64) []float64 {
	if len(env) == 0 {
		return nil
	}

	strength := make([]float64, len(env))
	for i := 1; i < len(env); i++ {
		d := env[i] - env[i-1]
		if d > 0 {
			strength[i] = d
		}
	}
	return strength
}

// FindPeaks returns the indices of local maxima above height, keeping
// the strongest peak of any pair closer than minDistance.
func FindPeaks(values []float64, height float64, minDistance int) []int {
	if len(values) < 3 {
		return nil
	}
	if minDistance < 1 {
		minDistance = 1
	}

	var candidates []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] < height {
			continue
		}
		if values[i] > values[i-1] && values[i] >= values[i+1] {
			candidates = append(candidates, i)
		}
	}

	// Strongest first, then enforce spacing
	sort.Slice(candidates, func(a, b int) bool {
		return values[candidates[a]] > values[candidates[b]]
	})

	var kept []int
	for _, c := range candidates {
		tooClose := false
		for _, k := range kept {
			if abs(c-k) < minDistance {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, c)
		}
	}

	sort.Ints(kept)
	return kept
}

// DetectOnsets picks onset times from the strength curve using an
// adaptive threshold of mean plus half the peak-to-mean spread.
func DetectOnsets(strength []float64, sampleRate, hopSize int) []float64 {
	if len(strength) == 0 {
		return nil
	}

	mean := Mean(strength)
	max := 0.0
	for _, v := range strength {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return nil
	}

	threshold := mean + (max-mean)*0.25

	// Onsets closer than 50ms collapse to the stronger one
	frameRate := float64(sampleRate) / float64(hopSize)
	minDistance := int(frameRate * 0.05)

	peaks := FindPeaks(strength, threshold, minDistance)

	times := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		times = append(times, FrameTime(p, sampleRate, hopSize))
	}
	return times
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
