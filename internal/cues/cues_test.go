package cues

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcw/timing-analyze/internal/domain"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVImporter(t *testing.T) {
	path := writeTempFile(t, "cues.csv", `label,start,end
Intro,0:00,0:45
Verse,0:45,
Chorus,1:30,2:15
`)

	sheet, err := NewCSVImporter().Import(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, sheet.Cues, 3)

	assert.Equal(t, "Intro", sheet.Cues[0].Label)
	assert.InDelta(t, 45.0, sheet.Cues[0].End, 1e-9)
	assert.Equal(t, "Verse", sheet.Cues[1].Label)
	assert.InDelta(t, 45.0, sheet.Cues[1].Start, 1e-9)
	assert.InDelta(t, 90.0, sheet.Cues[2].Start, 1e-9)
}

func TestCSVImporterErrors(t *testing.T) {
	importer := NewCSVImporter()
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := importer.Import(ctx, "missing.csv")
		assert.Error(t, err)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		path := writeTempFile(t, "bad.csv", "Intro,notatime\n")
		_, err := importer.Import(ctx, path)
		assert.Error(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		path := writeTempFile(t, "inverted.csv", "Intro,1:00,0:30\n")
		_, err := importer.Import(ctx, path)
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		path := writeTempFile(t, "header.csv", "label,start,end\n")
		_, err := importer.Import(ctx, path)
		assert.Error(t, err)
	})
}

func TestHTMLImporterFile(t *testing.T) {
	path := writeTempFile(t, "cues.html", `<html><body>
<ul>
  <li class="cue"><span class="time">0:00</span><span class="label">Intro</span></li>
  <li class="cue"><span class="time">1:30</span><span class="label">Chorus</span></li>
  <li class="cue">3:00 Outro</li>
  <li class="cue">not a cue</li>
</ul>
</body></html>`)

	sheet, err := NewHTMLImporter().Import(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, sheet.Cues, 3)

	assert.Equal(t, "Intro", sheet.Cues[0].Label)
	assert.InDelta(t, 90.0, sheet.Cues[1].Start, 1e-9)
	assert.Equal(t, "Outro", sheet.Cues[2].Label)
	assert.InDelta(t, 180.0, sheet.Cues[2].Start, 1e-9)
}

func TestHTMLImporterNoCues(t *testing.T) {
	path := writeTempFile(t, "empty.html", `<html><body><p>nothing here</p></body></html>`)

	_, err := NewHTMLImporter().Import(context.Background(), path)
	assert.Error(t, err)
}

func TestCompositeImporterFallsThrough(t *testing.T) {
	// Not valid CSV cues, but valid HTML cues
	path := writeTempFile(t, "cues.html", `<html><body>
<div class="cue"><span class="time">0:10</span><span class="label">Verse</span></div>
</body></html>`)

	sheet, err := NewCompositeImporter().Import(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, sheet.Cues, 1)
	assert.Equal(t, "Verse", sheet.Cues[0].Label)
}

func TestCompositeImporterAllFail(t *testing.T) {
	_, err := NewCompositeImporter().Import(context.Background(), "missing.anything")
	assert.Error(t, err)
}

func TestApplyRelabelsSections(t *testing.T) {
	timeline := &domain.Timeline{
		Duration: 180,
		Sections: []*domain.Section{
			{Label: "Section 1", Start: 0, End: 50},
			{Label: "Section 2", Start: 50, End: 120},
			{Label: "Section 3", Start: 120, End: 180},
		},
	}

	sheet := &Sheet{Cues: []*Cue{
		{Label: "Chorus", Start: 60},
		{Label: "Intro", Start: 0},
		// no cue covers the last section... it keeps its label only if
		// nothing overlaps, so give the last cue no end and let
		// normalize extend it
	}}

	Apply(timeline, sheet)

	assert.Equal(t, "Intro", timeline.Sections[0].Label)
	assert.Equal(t, "Chorus", timeline.Sections[1].Label)
	assert.Equal(t, "Chorus", timeline.Sections[2].Label)
}

func TestApplyNilSafe(t *testing.T) {
	Apply(nil, nil)
	Apply(&domain.Timeline{}, nil)
}
