package domain

import (
	"fmt"
)

// TransitionKind classifies what changes at a boundary.
type TransitionKind string

const (
	TransitionRise     TransitionKind = "rise"
	TransitionFall     TransitionKind = "fall"
	TransitionSteady   TransitionKind = "steady"
	TransitionDialogue TransitionKind = "dialogue"
)

// Subsection is a single timed sub-range within a section.
type Subsection struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Index int     `json:"index"`
}

// Section is a top-level grouping of timed content.
type Section struct {
	Label       string        `json:"label"`
	Start       float64       `json:"start"`
	End         float64       `json:"end"`
	Index       int           `json:"index"`
	Subsections []*Subsection `json:"subsections"`
}

// Duration returns the section length in seconds.
func (s *Section) Duration() float64 {
	return s.End - s.Start
}

// Share returns the fraction of the total duration this section covers.
func (s *Section) Share(total float64) float64 {
	if total <= 0 {
		return 0
	}
	return s.Duration() / total
}

// Transition is a boundary between subsections deemed relevant.
type Transition struct {
	At          float64        `json:"at"`
	Kind        TransitionKind `json:"kind"`
	FromLabel   string         `json:"from_label"`
	ToLabel     string         `json:"to_label"`
	EnergyDelta float64        `json:"energy_delta,omitempty"`
}

// Timeline is the ordered section tree produced by segmentation.
type Timeline struct {
	Sections    []*Section    `json:"sections"`
	Transitions []*Transition `json:"transitions"`
	Duration    float64       `json:"duration"`
}

// Validate checks the ordering invariants: sections cover the timeline in
// order without overlap, and subsections stay inside their section.
func (t *Timeline) Validate() error {
	if t.Duration < 0 {
		return fmt.Errorf("negative duration: %f", t.Duration)
	}

	prevEnd := 0.0
	for i, section := range t.Sections {
		if section.Start > section.End {
			return fmt.Errorf("section %d (%s): start %.3f after end %.3f",
				i, section.Label, section.Start, section.End)
		}
		if section.Start < prevEnd {
			return fmt.Errorf("section %d (%s): overlaps previous section at %.3f",
				i, section.Label, section.Start)
		}
		prevEnd = section.End

		subPrevEnd := section.Start
		for j, sub := range section.Subsections {
			if sub.Start > sub.End {
				return fmt.Errorf("section %d subsection %d: start %.3f after end %.3f",
					i, j, sub.Start, sub.End)
			}
			if sub.Start < subPrevEnd {
				return fmt.Errorf("section %d subsection %d: overlaps previous at %.3f",
					i, j, sub.Start)
			}
			if sub.End > section.End {
				return fmt.Errorf("section %d subsection %d: ends at %.3f past section end %.3f",
					i, j, sub.End, section.End)
			}
			subPrevEnd = sub.End
		}
	}

	if prevEnd > t.Duration {
		return fmt.Errorf("sections end at %.3f past timeline duration %.3f", prevEnd, t.Duration)
	}

	for i, tr := range t.Transitions {
		if tr.At < 0 || tr.At > t.Duration {
			return fmt.Errorf("transition %d: at %.3f outside [0, %.3f]", i, tr.At, t.Duration)
		}
	}

	return nil
}

// SectionAt returns the section containing the given time, or nil.
func (t *Timeline) SectionAt(at float64) *Section {
	for _, section := range t.Sections {
		if at >= section.Start && at < section.End {
			return section
		}
	}
	if n := len(t.Sections); n > 0 && at == t.Sections[n-1].End {
		return t.Sections[n-1]
	}
	return nil
}
