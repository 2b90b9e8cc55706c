package audio

import (
	"context"
)

// Engine decodes and probes audio files for analysis.
type Engine interface {
	// Probe returns stream metadata without decoding the audio.
	Probe(ctx context.Context, inputPath string) (*ProbeResult, error)

	// Decode converts the input to mono PCM samples in [-1, 1] at the
	// requested sample rate.
	Decode(ctx context.Context, inputPath string, sampleRate int) ([]float64, error)

	// ExtractClip cuts a time range of the input to its own audio file.
	ExtractClip(ctx context.Context, cp ClipParams) error
}

// ProbeResult holds the stream metadata relevant to analysis.
type ProbeResult struct {
	Duration   float64
	SampleRate int
	Channels   int
	Format     string
	BitRate    int64
}

// ClipParams describes a single clip extraction.
type ClipParams struct {
	InputPath     string
	OutputPath    string
	FileExtension string
	StartSeconds  float64
	EndSeconds    float64
	Label         string
}
