package cues

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/marcw/timing-analyze/internal/domain"
)

// HTMLImporter scrapes cue sheets published as web pages: any element
// with class "cue" holding a ".time" child and either a ".label" child
// or plain text after the timestamp. Local HTML files are parsed
// directly; remote URLs are fetched with a collector.
type HTMLImporter struct {
	userAgent string
}

func NewHTMLImporter() *HTMLImporter {
	return &HTMLImporter{
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

func (h *HTMLImporter) Name() string {
	return "html"
}

func (h *HTMLImporter) Import(ctx context.Context, source string) (*Sheet, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return h.importURL(source)
	}
	return h.importFile(source)
}

func (h *HTMLImporter) importFile(path string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HTML file: %w", err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	sheet := &Sheet{}
	doc.Find(".cue").Each(func(_ int, s *goquery.Selection) {
		if cue := parseCueSelection(s); cue != nil {
			sheet.Cues = append(sheet.Cues, cue)
		}
	})

	if len(sheet.Cues) == 0 {
		return nil, fmt.Errorf("no cues found in HTML file")
	}
	return sheet, nil
}

func (h *HTMLImporter) importURL(url string) (*Sheet, error) {
	c := colly.NewCollector(colly.AllowURLRevisit())

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", h.userAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Warn("Cue sheet request failed", "url", r.Request.URL, "error", err)
	})

	sheet := &Sheet{}
	c.OnHTML(".cue", func(e *colly.HTMLElement) {
		if cue := parseCueSelection(e.DOM); cue != nil {
			sheet.Cues = append(sheet.Cues, cue)
		}
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("failed to fetch cue sheet: %w", err)
	}

	if len(sheet.Cues) == 0 {
		return nil, fmt.Errorf("no cues found at %s", url)
	}
	return sheet, nil
}

// parseCueSelection extracts one cue from a .cue element. Returns nil
// when no usable timestamp is present.
func parseCueSelection(s *goquery.Selection) *Cue {
	timeText := strings.TrimSpace(s.Find(".time").First().Text())
	label := strings.TrimSpace(s.Find(".label").First().Text())

	if timeText == "" {
		// Fall back to "MM:SS Label" plain text
		fields := strings.Fields(strings.TrimSpace(s.Text()))
		if len(fields) == 0 {
			return nil
		}
		timeText = fields[0]
		if label == "" && len(fields) > 1 {
			label = strings.Join(fields[1:], " ")
		}
	}

	start, err := domain.ParseTimestamp(timeText)
	if err != nil {
		slog.Debug("Skipping cue with unparseable time", "time", timeText, "error", err)
		return nil
	}

	return &Cue{Label: label, Start: start}
}
