// Package transcript parses timed transcripts (SRT, WebVTT) and
// segments them into sections by dialogue changes.
package transcript

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Cue is a single timed line of dialogue.
type Cue struct {
	Start   float64
	End     float64
	Speaker string
	Text    string
}

// Document is an ordered list of cues.
type Document struct {
	Cues []*Cue
}

// Duration returns the end time of the last cue.
func (d *Document) Duration() float64 {
	if len(d.Cues) == 0 {
		return 0
	}
	return d.Cues[len(d.Cues)-1].End
}

// SupportedExtensions lists the transcript formats Parse understands.
var SupportedExtensions = []string{".srt", ".vtt"}

// IsTranscript reports whether the path looks like a transcript file.
func IsTranscript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// Parse dispatches on the file extension.
func Parse(path string, data []byte) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return ParseSRT(data)
	case ".vtt":
		return ParseVTT(data)
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s", filepath.Ext(path))
	}
}

// splitSpeaker extracts a leading "Name: text" speaker prefix.
func splitSpeaker(line string) (speaker, text string) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > 40 {
		return "", line
	}
	candidate := strings.TrimSpace(line[:idx])
	rest := strings.TrimSpace(line[idx+1:])
	if candidate == "" || rest == "" {
		return "", line
	}
	// Timestamps and URLs also contain colons; a speaker name does not
	// contain digits or slashes, and is not a URL scheme.
	if strings.ContainsAny(candidate, "0123456789/") || strings.HasPrefix(rest, "/") {
		return "", line
	}
	return candidate, rest
}
