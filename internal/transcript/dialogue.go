package transcript

import (
	"fmt"

	"github.com/marcw/timing-analyze/internal/domain"
)

// A silence longer than this starts a new section, the same heuristic
// used to break conversations apart.
const DefaultGapSeconds = 1.5

// Segment groups cues into sections by dialogue changes: a new section
// starts when the speaker changes or the gap since the previous cue
// exceeds gapSeconds. Cues become subsections; section starts become
// dialogue transitions. Overlapping cue times are clamped so the
// resulting timeline always validates.
func Segment(doc *Document, gapSeconds float64) (*domain.Timeline, error) {
	if doc == nil || len(doc.Cues) == 0 {
		return nil, fmt.Errorf("empty transcript")
	}
	if gapSeconds <= 0 {
		gapSeconds = DefaultGapSeconds
	}

	duration := doc.Duration()
	timeline := &domain.Timeline{}

	var current *domain.Section
	prevEnd := 0.0
	for i, cue := range doc.Cues {
		start := cue.Start
		if start < prevEnd {
			start = prevEnd
		}
		end := cue.End
		if end < start {
			end = start
		}
		if end > duration {
			duration = end
		}

		startNew := current == nil
		if !startNew {
			prev := doc.Cues[i-1]
			if cue.Start-prev.End > gapSeconds {
				startNew = true
			}
			if cue.Speaker != prev.Speaker && cue.Speaker != "" && prev.Speaker != "" {
				startNew = true
			}
		}

		if startNew {
			if current != nil {
				timeline.Transitions = append(timeline.Transitions, &domain.Transition{
					At:        start,
					Kind:      domain.TransitionDialogue,
					FromLabel: current.Label,
					ToLabel:   sectionLabel(cue, len(timeline.Sections)+1),
				})
			}

			current = &domain.Section{
				Label: sectionLabel(cue, len(timeline.Sections)+1),
				Start: start,
				Index: len(timeline.Sections) + 1,
			}
			timeline.Sections = append(timeline.Sections, current)
		}

		current.Subsections = append(current.Subsections, &domain.Subsection{
			Label: subsectionLabel(cue),
			Start: start,
			End:   end,
			Index: len(current.Subsections) + 1,
		})
		current.End = end
		prevEnd = end
	}

	timeline.Duration = duration
	if err := timeline.Validate(); err != nil {
		return nil, fmt.Errorf("dialogue segmentation produced an invalid timeline: %w", err)
	}
	return timeline, nil
}

func sectionLabel(cue *Cue, index int) string {
	if cue.Speaker != "" {
		return fmt.Sprintf("%s (%d)", cue.Speaker, index)
	}
	return fmt.Sprintf("Section %d", index)
}

func subsectionLabel(cue *Cue) string {
	const maxLabel = 40
	text := cue.Text
	if runes := []rune(text); len(runes) > maxLabel {
		text = string(runes[:maxLabel]) + "..."
	}
	if text == "" {
		text = "(silence)"
	}
	return text
}
