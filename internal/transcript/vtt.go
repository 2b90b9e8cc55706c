package transcript

import (
	"fmt"
	"strings"
)

// ParseVTT parses WebVTT. Header blocks (WEBVTT, NOTE, STYLE) are
// skipped; cue identifiers before the timing line are tolerated.
func ParseVTT(data []byte) (*Document, error) {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(strings.TrimSpace(s), "WEBVTT") {
		return nil, fmt.Errorf("missing WEBVTT header")
	}

	blocks := splitBlocks([]byte(s))

	doc := &Document{}
	for _, block := range blocks {
		cue, ok := parseVTTBlock(block)
		if ok {
			doc.Cues = append(doc.Cues, cue)
		}
	}

	if len(doc.Cues) == 0 {
		return nil, fmt.Errorf("no cues found in VTT input")
	}
	return doc, nil
}

func parseVTTBlock(lines []string) (*Cue, bool) {
	timingIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			timingIdx = i
			break
		}
	}
	if timingIdx == -1 {
		return nil, false // header, NOTE or STYLE block
	}

	start, end, err := parseTimingLine(lines[timingIdx], ".")
	if err != nil {
		return nil, false
	}

	text := strings.Join(lines[timingIdx+1:], " ")

	// VTT voice tags carry the speaker: <v Name>text</v>
	speaker := ""
	if strings.HasPrefix(text, "<v ") {
		if close := strings.Index(text, ">"); close != -1 {
			speaker = strings.TrimSpace(text[3:close])
			text = strings.TrimSuffix(strings.TrimSpace(text[close+1:]), "</v>")
		}
	} else {
		speaker, text = splitSpeaker(text)
	}

	return &Cue{Start: start, End: end, Speaker: speaker, Text: text}, true
}
