package analysis

const (
	minBPM = 60.0
	maxBPM = 200.0
)

// EstimateTempo estimates beats per minute by autocorrelating the onset
// strength curve over the 60-200 BPM lag window.
func EstimateTempo(strength []float64, sampleRate, hopSize int) float64 {
	frameRate := float64(sampleRate) / float64(hopSize)

	minLag := int(frameRate * 60.0 / maxBPM)
	maxLag := int(frameRate * 60.0 / minBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(strength) {
		maxLag = len(strength) - 1
	}
	if maxLag < minLag {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := lag; i < len(strength); i++ {
			corr += strength[i] * strength[i-lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr == 0 {
		return 0
	}

	return 60.0 * frameRate / float64(bestLag)
}

// TrackBeats places beats on the strongest onset peaks spaced roughly a
// beat period apart. Returns beat times in seconds.
func TrackBeats(strength []float64, sampleRate, hopSize int, bpm float64) []float64 {
	if bpm <= 0 || len(strength) == 0 {
		return nil
	}

	frameRate := float64(sampleRate) / float64(hopSize)
	period := frameRate * 60.0 / bpm

	// Allow a little drift around the nominal period
	minDistance := int(period * 0.8)
	if minDistance < 1 {
		minDistance = 1
	}

	threshold := Mean(strength) * 0.5
	peaks := FindPeaks(strength, threshold, minDistance)

	times := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		times = append(times, FrameTime(p, sampleRate, hopSize))
	}
	return times
}
