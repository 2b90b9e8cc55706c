package domain

import "time"

// SourceKind identifies what kind of input was analyzed.
type SourceKind string

const (
	SourceAudio      SourceKind = "audio"
	SourceTranscript SourceKind = "transcript"
)

// SourceInfo describes the analyzed input.
type SourceInfo struct {
	Path       string     `json:"path"`
	Name       string     `json:"name"`
	Kind       SourceKind `json:"kind"`
	SampleRate int        `json:"sample_rate,omitempty"`
	Channels   int        `json:"channels,omitempty"`
}

// EnergySample is one entry of the per-second RMS energy table.
type EnergySample struct {
	Second int     `json:"second"`
	RMS    float64 `json:"rms"`
}

// Analysis holds every feature extracted from a single input.
type Analysis struct {
	Source   SourceInfo `json:"source"`
	Duration float64    `json:"duration"`

	// Tempo in beats per minute; zero for transcript inputs.
	Tempo float64 `json:"tempo,omitempty"`

	BeatTimes   []float64      `json:"beat_times,omitempty"`
	OnsetTimes  []float64      `json:"onset_times,omitempty"`
	EnergyPeaks []float64      `json:"energy_peaks,omitempty"`
	Energy      []EnergySample `json:"energy,omitempty"`

	Timeline *Timeline `json:"timeline"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Detailed reports carry per-second energy, beats and onsets; basic
// reports keep only the timeline and summary statistics.
type Report struct {
	Analysis *Analysis `json:"analysis"`
	Detailed bool      `json:"detailed"`
}
