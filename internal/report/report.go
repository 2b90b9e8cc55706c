package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcw/timing-analyze/internal/domain"
	"github.com/marcw/timing-analyze/internal/storage"
)

// Format identifies one output artifact type.
type Format string

const (
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// Artifact file names within a report directory.
const (
	promptFileName = "prompt.txt"
	jsonFileName   = "report.json"
	mdFileName     = "report.md"
	viewerFileName = "viewer.html"
	indexFileName  = "index.json"
)

// ParseFormats parses a comma separated format list such as "txt,json".
// The special value "all" selects every format.
func ParseFormats(s string) ([]Format, error) {
	if s == "" || s == "all" {
		return []Format{FormatText, FormatJSON, FormatMarkdown}, nil
	}

	seen := make(map[Format]bool)
	var formats []Format
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		switch f {
		case FormatText, FormatJSON, FormatMarkdown:
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		default:
			return nil, fmt.Errorf("unknown report format: %q", part)
		}
	}
	return formats, nil
}

// Renderer emits report artifacts through a storage backend.
type Renderer struct {
	store  storage.Storage
	logger *slog.Logger
}

// NewRenderer creates a renderer writing through the given storage.
func NewRenderer(store storage.Storage) *Renderer {
	return &Renderer{
		store:  store,
		logger: slog.Default().With("component", "report"),
	}
}

type artifactIndex struct {
	Slug        string    `json:"slug"`
	Input       string    `json:"input"`
	GeneratedAt time.Time `json:"generated_at"`
	Artifacts   []string  `json:"artifacts"`
}

// Render writes the requested artifacts for a report into a directory
// named after the slug and returns the paths of every file written.
func (r *Renderer) Render(report *domain.Report, slug string, formats []Format) ([]string, error) {
	if report == nil || report.Analysis == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	if len(formats) == 0 {
		formats = []Format{FormatText, FormatJSON, FormatMarkdown}
	}

	dir, err := r.store.CreateReportDir(slug)
	if err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var written []string
	for _, f := range formats {
		switch f {
		case FormatText:
			path := filepath.Join(dir, promptFileName)
			if err := r.writeFile(path, []byte(BuildPrompt(report))); err != nil {
				return nil, err
			}
			written = append(written, path)
		case FormatJSON:
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to encode report: %w", err)
			}
			path := filepath.Join(dir, jsonFileName)
			if err := r.writeFile(path, data); err != nil {
				return nil, err
			}
			written = append(written, path)

			// The viewer loads report.json from its own directory, so it
			// only makes sense alongside the JSON artifact.
			viewerPath := filepath.Join(dir, viewerFileName)
			if err := r.writeFile(viewerPath, viewerHTML); err != nil {
				return nil, err
			}
			written = append(written, viewerPath)
		case FormatMarkdown:
			path := filepath.Join(dir, mdFileName)
			if err := r.writeFile(path, []byte(BuildMarkdown(report))); err != nil {
				return nil, err
			}
			written = append(written, path)
		}
	}

	index := artifactIndex{
		Slug:        slug,
		Input:       report.Analysis.Source.Name,
		GeneratedAt: time.Now().UTC(),
		Artifacts:   baseNames(written),
	}
	indexData, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact index: %w", err)
	}
	indexPath := filepath.Join(dir, indexFileName)
	if err := r.writeFile(indexPath, indexData); err != nil {
		return nil, err
	}
	written = append(written, indexPath)

	r.logger.Info("report rendered", "slug", slug, "artifacts", len(written))
	return written, nil
}

func (r *Renderer) writeFile(path string, data []byte) error {
	w, err := r.store.GetWriter(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", filepath.Base(path), err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return w.Close()
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
