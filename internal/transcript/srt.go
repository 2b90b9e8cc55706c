package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSRT parses minimal, common SRT. Blocks that fail to parse are
// skipped so a stray malformed cue does not sink the whole file.
func ParseSRT(data []byte) (*Document, error) {
	blocks := splitBlocks(data)

	doc := &Document{}
	for _, block := range blocks {
		cue, err := parseSRTBlock(block)
		if err != nil {
			continue
		}
		doc.Cues = append(doc.Cues, cue)
	}

	if len(doc.Cues) == 0 {
		return nil, fmt.Errorf("no cues found in SRT input")
	}
	return doc, nil
}

// splitBlocks splits transcript text on blank lines, trimming each block.
func splitBlocks(data []byte) [][]string {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	parts := strings.Split(s, "\n\n")

	out := make([][]string, 0, len(parts))
	for _, p := range parts {
		lines := strings.Split(p, "\n")
		trimmed := make([]string, 0, len(lines))
		for _, l := range lines {
			trimmed = append(trimmed, strings.TrimRight(l, " \t"))
		}
		for len(trimmed) > 0 && strings.TrimSpace(trimmed[0]) == "" {
			trimmed = trimmed[1:]
		}
		for len(trimmed) > 0 && strings.TrimSpace(trimmed[len(trimmed)-1]) == "" {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if len(trimmed) > 0 {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseSRTBlock(lines []string) (*Cue, error) {
	if len(lines) < 2 {
		return nil, fmt.Errorf("srt block too short")
	}

	// First line is (usually) the index; some files omit it
	timingLine := lines[1]
	textStart := 2
	if strings.Contains(lines[0], "-->") {
		timingLine = lines[0]
		textStart = 1
	}

	start, end, err := parseTimingLine(timingLine, ",")
	if err != nil {
		return nil, fmt.Errorf("parse timing: %w", err)
	}

	text := strings.Join(lines[textStart:], " ")
	speaker, text := splitSpeaker(text)

	return &Cue{Start: start, End: end, Speaker: speaker, Text: text}, nil
}

func parseTimingLine(line, millisSep string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing separator")
	}

	start, err := parseClock(strings.TrimSpace(parts[0]), millisSep)
	if err != nil {
		return 0, 0, fmt.Errorf("start time: %w", err)
	}

	// VTT allows cue settings after the end time
	endStr := strings.TrimSpace(parts[1])
	if idx := strings.IndexAny(endStr, " \t"); idx != -1 {
		endStr = endStr[:idx]
	}

	end, err := parseClock(endStr, millisSep)
	if err != nil {
		return 0, 0, fmt.Errorf("end time: %w", err)
	}

	if end < start {
		return 0, 0, fmt.Errorf("cue ends before it starts: %s", line)
	}
	return start, end, nil
}

// parseClock parses "HH:MM:SS,mmm" (SRT) or "MM:SS.mmm" (VTT) clocks.
func parseClock(s, millisSep string) (float64, error) {
	clockMillis := strings.Split(s, millisSep)
	if len(clockMillis) != 2 {
		return 0, fmt.Errorf("missing millis in %q", s)
	}

	ms, err := strconv.Atoi(clockMillis[1])
	if err != nil {
		return 0, fmt.Errorf("invalid millis: %w", err)
	}

	hms := strings.Split(clockMillis[0], ":")
	var h, m, sec int
	switch len(hms) {
	case 3:
		if h, err = strconv.Atoi(hms[0]); err != nil {
			return 0, err
		}
		if m, err = strconv.Atoi(hms[1]); err != nil {
			return 0, err
		}
		if sec, err = strconv.Atoi(hms[2]); err != nil {
			return 0, err
		}
	case 2:
		if m, err = strconv.Atoi(hms[0]); err != nil {
			return 0, err
		}
		if sec, err = strconv.Atoi(hms[1]); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("invalid clock %q", s)
	}

	return float64(h)*3600 + float64(m)*60 + float64(sec) + float64(ms)/1000, nil
}
