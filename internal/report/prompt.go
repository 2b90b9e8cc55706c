package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/marcw/timing-analyze/internal/domain"
)

// BuildPrompt renders the analysis as descriptive text suitable for
// pasting into an AI prompt. Detailed reports append the per-second
// energy table.
func BuildPrompt(report *domain.Report) string {
	a := report.Analysis
	var b strings.Builder

	if a.Tempo > 0 {
		fmt.Fprintf(&b, "This song has a tempo of approximately %.1f BPM (beats per minute).\n", a.Tempo)
	}
	minutes := math.Floor(a.Duration / 60)
	seconds := a.Duration - minutes*60
	fmt.Fprintf(&b, "It has a duration of %.0f minutes and %.0f seconds.\n\n", minutes, seconds)

	if len(a.BeatTimes) > 0 {
		fmt.Fprintf(&b, "The song contains %d beats.\n", len(a.BeatTimes))
	}

	if a.Timeline != nil && len(a.Timeline.Sections) > 0 {
		fmt.Fprintf(&b, "The song can be divided into %d distinct sections.\n", len(a.Timeline.Sections))
		b.WriteString("Key timing markers (in seconds):\n")
		for i, section := range a.Timeline.Sections {
			if i == 0 {
				b.WriteString("- Start: 0.0\n")
				continue
			}
			fmt.Fprintf(&b, "- Section change at: %.2f\n", section.Start)
		}
	}

	if len(a.EnergyPeaks) > 0 {
		b.WriteString("\nSignificant dynamic changes (potential chorus/drop sections):\n")
		for _, peak := range a.EnergyPeaks {
			fmt.Fprintf(&b, "- Energy peak at: %.2f seconds\n", peak)
		}
	}

	if report.Detailed && len(a.Energy) > 0 {
		b.WriteString("\nDetailed RMS Energy Analysis (second by second):\n")
		for _, sample := range a.Energy {
			fmt.Fprintf(&b, "- Second %d: RMS Energy = %.6f\n", sample.Second, sample.RMS)
		}
	}

	return b.String()
}
