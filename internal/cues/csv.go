package cues

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/marcw/timing-analyze/internal/domain"
)

// CSVImporter reads cue sheets of the form: label,start[,end] with an
// optional header row. Times accept "H:MM:SS", "MM:SS" or seconds.
type CSVImporter struct {
}

func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

func (c *CSVImporter) Name() string {
	return "csv"
}

func (c *CSVImporter) Import(ctx context.Context, source string) (*Sheet, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ','
	reader.FieldsPerRecord = -1

	sheet, err := c.parseSheet(reader)
	if err != nil {
		return nil, err
	}

	if len(sheet.Cues) == 0 {
		return nil, fmt.Errorf("no cues found in CSV file")
	}

	return sheet, nil
}

func (c *CSVImporter) parseSheet(reader *csv.Reader) (*Sheet, error) {
	sheet := &Sheet{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("invalid CSV record: expected at least 2 fields, got %d", len(record))
		}

		label := strings.TrimSpace(record[0])
		startField := strings.TrimSpace(record[1])

		// Tolerate a header row
		if strings.EqualFold(label, "label") && strings.EqualFold(startField, "start") {
			slog.Debug("Skipping CSV header row")
			continue
		}

		start, err := domain.ParseTimestamp(startField)
		if err != nil {
			return nil, fmt.Errorf("cue %q: %w", label, err)
		}

		cue := &Cue{Label: label, Start: start}
		if len(record) >= 3 && strings.TrimSpace(record[2]) != "" {
			end, err := domain.ParseTimestamp(strings.TrimSpace(record[2]))
			if err != nil {
				return nil, fmt.Errorf("cue %q: %w", label, err)
			}
			if end < start {
				return nil, fmt.Errorf("cue %q: ends at %.3f before start %.3f", label, end, start)
			}
			cue.End = end
		}

		sheet.Cues = append(sheet.Cues, cue)
	}

	return sheet, nil
}
