package analysis

import (
	"math"
	"testing"

	"github.com/marcw/timing-analyze/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietThenLoud builds a signal that is silent for the first half and a
// constant-amplitude square wave for the second half.
func quietThenLoud(sampleRate int, seconds float64, amplitude float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float64, n)
	for i := n / 2; i < n; i++ {
		if i%2 == 0 {
			samples[i] = amplitude
		} else {
			samples[i] = -amplitude
		}
	}
	return samples
}

func testConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		SampleRate:         1000,
		FrameSize:          100,
		HopSize:            50,
		TargetSections:     2,
		PeakThresholdRatio: 1.2,
		MinSectionSeconds:  1,
	}
}

func TestEnvelope(t *testing.T) {
	samples := quietThenLoud(1000, 10, 0.5)
	env := Envelope(samples, 100, 50)

	require.NotEmpty(t, env)

	// Quiet half is silent, loud half sits at the square wave amplitude
	assert.InDelta(t, 0.0, env[10], 1e-9)
	assert.InDelta(t, 0.5, env[len(env)-5], 1e-3)
}

func TestEnvelopeEmptyInput(t *testing.T) {
	assert.Nil(t, Envelope(nil, 100, 50))
	assert.Nil(t, Envelope([]float64{0.5}, 0, 50))
}

func TestOnsetStrengthRectifies(t *testing.T) {
	strength := OnsetStrength([]float64{0.1, 0.5, 0.2, 0.6})

	require.Len(t, strength, 4)
	assert.Equal(t, 0.0, strength[0])
	assert.InDelta(t, 0.4, strength[1], 1e-9)
	assert.Equal(t, 0.0, strength[2]) // falls do not count
	assert.InDelta(t, 0.4, strength[3], 1e-9)
}

func TestFindPeaks(t *testing.T) {
	values := []float64{0, 1, 0, 0, 3, 0, 0, 2, 0}

	t.Run("all peaks", func(t *testing.T) {
		assert.Equal(t, []int{1, 4, 7}, FindPeaks(values, 0, 1))
	})

	t.Run("height filter", func(t *testing.T) {
		assert.Equal(t, []int{4, 7}, FindPeaks(values, 1.5, 1))
	})

	t.Run("distance keeps the stronger peak", func(t *testing.T) {
		assert.Equal(t, []int{4}, FindPeaks(values, 1.5, 4))
	})

	t.Run("too short", func(t *testing.T) {
		assert.Nil(t, FindPeaks([]float64{1, 2}, 0, 1))
	})
}

func TestDetectOnsetsFindsBurstStart(t *testing.T) {
	samples := quietThenLoud(1000, 10, 0.5)
	env := Envelope(samples, 100, 50)
	strength := OnsetStrength(env)

	onsets := DetectOnsets(strength, 1000, 50)

	require.NotEmpty(t, onsets)
	// The only energy rise is at the 5s midpoint
	assert.InDelta(t, 5.0, onsets[0], 0.2)
}

func TestDetectOnsetsSilence(t *testing.T) {
	strength := OnsetStrength(Envelope(make([]float64, 5000), 100, 50))
	assert.Empty(t, DetectOnsets(strength, 1000, 50))
}

func TestEstimateTempoOfClickTrain(t *testing.T) {
	// Synthetic onset strength with a spike every 25 frames at a frame
	// rate of 20 fps corresponds to 48 BPM intervals... keep the math
	// in one place: frameRate = 1000/50 = 20 fps, period 10 frames =
	// 0.5s per beat = 120 BPM.
	strength := make([]float64, 400)
	for i := 0; i < len(strength); i += 10 {
		strength[i] = 1.0
	}

	bpm := EstimateTempo(strength, 1000, 50)
	assert.InDelta(t, 120.0, bpm, 1.0)
}

func TestEstimateTempoSilence(t *testing.T) {
	assert.Equal(t, 0.0, EstimateTempo(make([]float64, 400), 1000, 50))
}

func TestTrackBeatsSpacing(t *testing.T) {
	strength := make([]float64, 400)
	for i := 5; i < len(strength); i += 10 {
		strength[i] = 1.0
	}

	beats := TrackBeats(strength, 1000, 50, 120)

	require.Greater(t, len(beats), 10)
	// Consecutive beats are at least 80% of a period apart
	for i := 1; i < len(beats); i++ {
		assert.GreaterOrEqual(t, beats[i]-beats[i-1], 0.4)
	}
}

func TestTrackBeatsNoTempo(t *testing.T) {
	assert.Nil(t, TrackBeats([]float64{1, 2, 3}, 1000, 50, 0))
}

func TestFindEnergyPeaks(t *testing.T) {
	// Mostly quiet envelope with two loud bumps
	env := make([]float64, 200)
	for i := range env {
		env[i] = 0.1
	}
	env[50] = 0.9
	env[150] = 0.8

	peaks := FindEnergyPeaks(env, 1000, 50, 1.2, 1.0)

	require.Len(t, peaks, 2)
	assert.InDelta(t, 2.5, peaks[0], 0.1)
	assert.InDelta(t, 7.5, peaks[1], 0.1)
}

func TestPerSecondEnergyTable(t *testing.T) {
	samples := quietThenLoud(1000, 10, 0.5)
	env := Envelope(samples, 100, 50)

	table := PerSecondEnergy(env, 1000, 50, 10)

	require.Len(t, table, 11)
	assert.Equal(t, 0, table[0].Second)
	assert.Equal(t, 10, table[10].Second)
	assert.InDelta(t, 0.0, table[2].RMS, 1e-9)
	assert.InDelta(t, 0.5, table[8].RMS, 1e-3)
}

func TestSegmentBoundariesSplitsAtEnergyChange(t *testing.T) {
	samples := quietThenLoud(1000, 10, 0.5)
	env := Envelope(samples, 100, 50)
	novelty := Novelty(env)

	boundaries := SegmentBoundaries(novelty, 1000, 50, 2, 1)

	require.Len(t, boundaries, 1)
	assert.InDelta(t, 5.0, boundaries[0], 0.5)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())
	samples := quietThenLoud(1000, 10, 0.5)

	result, err := analyzer.Analyze(samples)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, result.Duration, 1e-9)
	require.NotNil(t, result.Timeline)
	assert.NoError(t, result.Timeline.Validate())

	// Two sections around the energy change, rising transition between
	require.Len(t, result.Timeline.Sections, 2)
	require.Len(t, result.Timeline.Transitions, 1)
	assert.Equal(t, "Section 1", result.Timeline.Sections[0].Label)
	assert.InDelta(t, 5.0, result.Timeline.Transitions[0].At, 0.5)

	// Sections cover the whole timeline
	last := result.Timeline.Sections[len(result.Timeline.Sections)-1]
	assert.InDelta(t, result.Duration, last.End, 1e-9)

	// Every section carries at least one subsection inside its bounds
	for _, section := range result.Timeline.Sections {
		require.NotEmpty(t, section.Subsections)
		assert.Equal(t, section.Start, section.Subsections[0].Start)
		assert.Equal(t, section.End, section.Subsections[len(section.Subsections)-1].End)
	}

	assert.Len(t, result.Energy, 11)
}

func TestAnalyzeTransitionKinds(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	// Loud first half, quiet second half: the transition falls
	samples := quietThenLoud(1000, 10, 0.5)
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}

	result, err := analyzer.Analyze(samples)
	require.NoError(t, err)
	require.Len(t, result.Timeline.Transitions, 1)
	assert.Equal(t, "fall", string(result.Timeline.Transitions[0].Kind))
	assert.Less(t, result.Timeline.Transitions[0].EnergyDelta, 0.0)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	result, err := analyzer.Analyze(nil)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestFrameTime(t *testing.T) {
	assert.InDelta(t, 0.0, FrameTime(0, 1000, 50), 1e-9)
	assert.InDelta(t, 2.5, FrameTime(50, 1000, 50), 1e-9)
	assert.False(t, math.IsNaN(FrameTime(1, 22050, 512)))
}
