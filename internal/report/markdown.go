package report

import (
	"fmt"
	"strings"

	"github.com/marcw/timing-analyze/internal/domain"
)

// BuildMarkdown renders the analysis as a Markdown summary with a
// per-section table.
func BuildMarkdown(report *domain.Report) string {
	a := report.Analysis
	var b strings.Builder

	fmt.Fprintf(&b, "# Timing Analysis: %s\n\n", a.Source.Name)
	fmt.Fprintf(&b, "- **Duration:** %s\n", domain.FormatTimestamp(a.Duration))
	if a.Tempo > 0 {
		fmt.Fprintf(&b, "- **Tempo:** %.1f BPM\n", a.Tempo)
	}
	if len(a.BeatTimes) > 0 {
		fmt.Fprintf(&b, "- **Beats:** %d\n", len(a.BeatTimes))
	}
	if len(a.OnsetTimes) > 0 {
		fmt.Fprintf(&b, "- **Onsets:** %d\n", len(a.OnsetTimes))
	}
	fmt.Fprintf(&b, "- **Analyzed:** %s\n\n", a.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))

	if a.Timeline != nil && len(a.Timeline.Sections) > 0 {
		b.WriteString("## Sections\n\n")
		b.WriteString("| # | Label | Start | End | Duration | Share |\n")
		b.WriteString("|---|-------|-------|-----|----------|-------|\n")
		for _, s := range a.Timeline.Sections {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %.1f%% |\n",
				s.Index,
				s.Label,
				domain.FormatTimestamp(s.Start),
				domain.FormatTimestamp(s.End),
				domain.FormatTimestamp(s.Duration()),
				s.Share(a.Timeline.Duration)*100,
			)
		}
		b.WriteString("\n")

		for _, s := range a.Timeline.Sections {
			if len(s.Subsections) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", s.Label)
			for _, sub := range s.Subsections {
				fmt.Fprintf(&b, "- %s to %s: %s\n",
					domain.FormatTimestamp(sub.Start),
					domain.FormatTimestamp(sub.End),
					sub.Label,
				)
			}
			b.WriteString("\n")
		}
	}

	if a.Timeline != nil && len(a.Timeline.Transitions) > 0 {
		b.WriteString("## Transitions\n\n")
		for _, tr := range a.Timeline.Transitions {
			fmt.Fprintf(&b, "- %s: %s (%s to %s)\n",
				domain.FormatTimestamp(tr.At),
				tr.Kind,
				tr.FromLabel,
				tr.ToLabel,
			)
		}
		b.WriteString("\n")
	}

	if len(a.EnergyPeaks) > 0 {
		b.WriteString("## Energy Peaks\n\n")
		for _, peak := range a.EnergyPeaks {
			fmt.Fprintf(&b, "- %s\n", domain.FormatTimestamp(peak))
		}
		b.WriteString("\n")
	}

	if report.Detailed && len(a.Energy) > 0 {
		b.WriteString("## RMS Energy (per second)\n\n")
		b.WriteString("| Second | RMS |\n")
		b.WriteString("|--------|-----|\n")
		for _, sample := range a.Energy {
			fmt.Fprintf(&b, "| %d | %.6f |\n", sample.Second, sample.RMS)
		}
		b.WriteString("\n")
	}

	return b.String()
}
