package analysis

import (
	"fmt"
	"sort"

	"github.com/marcw/timing-analyze/config"
	"github.com/marcw/timing-analyze/internal/domain"
)

// Transitions whose relative energy shift stays inside this band are
// labeled steady.
const transitionRatio = 0.2

// Maximum subsections carved out of one section.
const maxSubsections = 4

// Analyzer runs the full feature extraction pipeline over PCM samples.
type Analyzer struct {
	sampleRate         int
	frameSize          int
	hopSize            int
	targetSections     int
	peakThresholdRatio float64
	minSectionSeconds  float64
}

// NewAnalyzer creates an analyzer from the analysis configuration.
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		sampleRate:         cfg.SampleRate,
		frameSize:          cfg.FrameSize,
		hopSize:            cfg.HopSize,
		targetSections:     cfg.TargetSections,
		peakThresholdRatio: cfg.PeakThresholdRatio,
		minSectionSeconds:  cfg.MinSectionSeconds,
	}
}

// SampleRate returns the rate samples must be decoded at.
func (a *Analyzer) SampleRate() int {
	return a.sampleRate
}

// Result bundles every feature extracted from one input.
type Result struct {
	Duration    float64
	Tempo       float64
	BeatTimes   []float64
	OnsetTimes  []float64
	EnergyPeaks []float64
	Energy      []domain.EnergySample
	Timeline    *domain.Timeline
}

// Analyze extracts all timing features from mono samples.
func (a *Analyzer) Analyze(samples []float64) (*Result, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to analyze")
	}

	duration := float64(len(samples)) / float64(a.sampleRate)

	env := Envelope(samples, a.frameSize, a.hopSize)
	strength := OnsetStrength(env)
	novelty := Novelty(env)

	tempo := EstimateTempo(strength, a.sampleRate, a.hopSize)

	boundaries := SegmentBoundaries(novelty, a.sampleRate, a.hopSize, a.targetSections, a.minSectionSeconds)

	timeline := a.buildTimeline(env, novelty, boundaries, duration)
	if err := timeline.Validate(); err != nil {
		return nil, fmt.Errorf("segmentation produced an invalid timeline: %w", err)
	}

	return &Result{
		Duration:    duration,
		Tempo:       tempo,
		BeatTimes:   TrackBeats(strength, a.sampleRate, a.hopSize, tempo),
		OnsetTimes:  DetectOnsets(strength, a.sampleRate, a.hopSize),
		EnergyPeaks: FindEnergyPeaks(env, a.sampleRate, a.hopSize, a.peakThresholdRatio, 1.0),
		Energy:      PerSecondEnergy(env, a.sampleRate, a.hopSize, duration),
		Timeline:    timeline,
	}, nil
}

// buildTimeline assembles the section tree from boundary times.
func (a *Analyzer) buildTimeline(env, novelty []float64, boundaries []float64, duration float64) *domain.Timeline {
	edges := make([]float64, 0, len(boundaries)+2)
	edges = append(edges, 0)
	for _, b := range boundaries {
		if b > 0 && b < duration {
			edges = append(edges, b)
		}
	}
	edges = append(edges, duration)

	timeline := &domain.Timeline{Duration: duration}

	for i := 0; i < len(edges)-1; i++ {
		section := &domain.Section{
			Label: fmt.Sprintf("Section %d", i+1),
			Start: edges[i],
			End:   edges[i+1],
			Index: i + 1,
		}
		section.Subsections = a.subsections(novelty, section)
		timeline.Sections = append(timeline.Sections, section)

		if i > 0 {
			timeline.Transitions = append(timeline.Transitions, a.transition(
				env, edges[i], timeline.Sections[i-1].Label, section.Label))
		}
	}

	return timeline
}

// subsections splits a section at its strongest internal novelty peaks.
func (a *Analyzer) subsections(novelty []float64, section *domain.Section) []*domain.Subsection {
	frameRate := float64(a.sampleRate) / float64(a.hopSize)
	startFrame := int(section.Start * frameRate)
	endFrame := int(section.End * frameRate)
	if endFrame > len(novelty) {
		endFrame = len(novelty)
	}

	var splits []float64
	if endFrame-startFrame > 2 {
		inner := novelty[startFrame:endFrame]
		minDistance := int(frameRate * a.minSectionSeconds / 2)
		peaks := FindPeaks(inner, 0, minDistance)

		sort.Slice(peaks, func(x, y int) bool { return inner[peaks[x]] > inner[peaks[y]] })
		if len(peaks) > maxSubsections-1 {
			peaks = peaks[:maxSubsections-1]
		}
		sort.Ints(peaks)

		for _, p := range peaks {
			at := FrameTime(startFrame+p, a.sampleRate, a.hopSize)
			// Peak picking can land on the section edges; skip those
			if at > section.Start && at < section.End {
				splits = append(splits, at)
			}
		}
	}

	edges := append([]float64{section.Start}, splits...)
	edges = append(edges, section.End)

	subs := make([]*domain.Subsection, 0, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		subs = append(subs, &domain.Subsection{
			Label: fmt.Sprintf("Part %d.%d", section.Index, i+1),
			Start: edges[i],
			End:   edges[i+1],
			Index: i + 1,
		})
	}
	return subs
}

// transition classifies a boundary by the energy shift across it.
func (a *Analyzer) transition(env []float64, at float64, fromLabel, toLabel string) *domain.Transition {
	frameRate := float64(a.sampleRate) / float64(a.hopSize)
	frame := int(at * frameRate)
	window := int(frameRate) // one second each side

	before := windowMean(env, frame-window, frame)
	after := windowMean(env, frame, frame+window)

	kind := domain.TransitionSteady
	delta := after - before
	if before > 0 {
		switch ratio := delta / before; {
		case ratio >= transitionRatio:
			kind = domain.TransitionRise
		case ratio <= -transitionRatio:
			kind = domain.TransitionFall
		}
	} else if after > 0 {
		kind = domain.TransitionRise
	}

	return &domain.Transition{
		At:          at,
		Kind:        kind,
		FromLabel:   fromLabel,
		ToLabel:     toLabel,
		EnergyDelta: delta,
	}
}

func windowMean(values []float64, lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}
	if hi > len(values) {
		hi = len(values)
	}
	if lo >= hi {
		return 0
	}
	return Mean(values[lo:hi])
}
