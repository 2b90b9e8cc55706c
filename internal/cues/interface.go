// Package cues imports externally authored cue sheets: known section
// labels with start times, used to name detected sections.
package cues

import (
	"context"
	"fmt"
	"sort"

	"github.com/marcw/timing-analyze/internal/domain"
)

// Cue is one labeled range of a cue sheet.
type Cue struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Sheet is an ordered list of cues.
type Sheet struct {
	Cues []*Cue `json:"cues"`
}

// Importer imports a cue sheet from a given source.
type Importer interface {
	Import(ctx context.Context, source string) (*Sheet, error)
	Name() string
}

// CompositeImporter tries multiple importers in sequence until one succeeds
type CompositeImporter struct {
	importers []Importer
}

func NewCompositeImporter() *CompositeImporter {
	return &CompositeImporter{
		importers: []Importer{
			NewCSVImporter(),
			NewHTMLImporter(),
		},
	}
}

func (c *CompositeImporter) Name() string {
	return "composite"
}

func (c *CompositeImporter) Import(ctx context.Context, source string) (*Sheet, error) {
	var errs []error
	for _, importer := range c.importers {
		sheet, err := importer.Import(ctx, source)
		if err == nil {
			return sheet, nil
		}
		errs = append(errs, fmt.Errorf("%s: %v", importer.Name(), err))
	}
	return nil, fmt.Errorf("all cue importers failed: %v", errs)
}

// normalize sorts cues by start and fills missing end times from the
// next cue's start.
func normalize(sheet *Sheet, duration float64) {
	sort.Slice(sheet.Cues, func(i, j int) bool {
		return sheet.Cues[i].Start < sheet.Cues[j].Start
	})

	for i, cue := range sheet.Cues {
		if cue.End > 0 {
			continue
		}
		if i+1 < len(sheet.Cues) {
			cue.End = sheet.Cues[i+1].Start
		} else if duration > cue.Start {
			cue.End = duration
		}
	}
}

// Apply relabels sections with the cue overlapping them the most.
func Apply(timeline *domain.Timeline, sheet *Sheet) {
	if timeline == nil || sheet == nil {
		return
	}

	normalize(sheet, timeline.Duration)

	for _, section := range timeline.Sections {
		var best *Cue
		bestOverlap := 0.0
		for _, cue := range sheet.Cues {
			o := overlap(section.Start, section.End, cue.Start, cue.End)
			if o > bestOverlap {
				bestOverlap = o
				best = cue
			}
		}
		if best != nil && best.Label != "" {
			section.Label = best.Label
		}
	}
}

func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
