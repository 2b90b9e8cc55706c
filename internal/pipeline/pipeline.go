package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcw/timing-analyze/config"
	"github.com/marcw/timing-analyze/internal/analysis"
	"github.com/marcw/timing-analyze/internal/audio"
	"github.com/marcw/timing-analyze/internal/cues"
	"github.com/marcw/timing-analyze/internal/domain"
	"github.com/marcw/timing-analyze/internal/downloader"
	"github.com/marcw/timing-analyze/internal/progress"
	"github.com/marcw/timing-analyze/internal/report"
	"github.com/marcw/timing-analyze/internal/storage"
	"github.com/marcw/timing-analyze/internal/transcript"
)

// Options control a single analysis run.
type Options struct {
	// Input is a local file path or an HTTP(S) URL.
	Input string

	// Detailed includes the per-second energy table in the report.
	Detailed bool

	// Formats selects which artifacts to emit; empty means all.
	Formats []report.Format

	// CueSource is an optional cue sheet (CSV or HTML, path or URL)
	// used to relabel sections.
	CueSource string

	// TargetSections overrides the configured section count when > 0.
	TargetSections int

	// Tracker receives stage events when set.
	Tracker *progress.Tracker
}

// Result describes one completed run.
type Result struct {
	Input     string
	Slug      string
	Analysis  *domain.Analysis
	Artifacts []string
}

// Pipeline wires download, decode, analysis and rendering together.
type Pipeline struct {
	cfg      *config.Config
	engine   audio.Engine
	store    storage.Storage
	renderer *report.Renderer
	importer cues.Importer
	logger   *slog.Logger
}

// New builds a pipeline from configuration and a storage backend.
func New(cfg *config.Config, store storage.Storage) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		engine:   audio.NewFFMPEGEngine(),
		store:    store,
		renderer: report.NewRenderer(store),
		importer: cues.NewCompositeImporter(),
		logger:   slog.Default().With("component", "pipeline"),
	}
}

// WithEngine replaces the audio engine, mainly for tests.
func (p *Pipeline) WithEngine(engine audio.Engine) *Pipeline {
	p.engine = engine
	return p
}

// Run analyzes a single input and renders its report artifacts.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("no input provided")
	}

	update := func(stage progress.Stage, percent float64, message string) {
		if opts.Tracker != nil {
			opts.Tracker.Update(stage, percent, message, nil)
		}
	}

	update(progress.StageInitializing, 0, "Starting analysis")
	p.logger.Info("starting analysis", "input", opts.Input)

	inputPath, cleanup, err := p.resolveInput(ctx, opts.Input, update)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var a *domain.Analysis
	if transcript.IsTranscript(inputPath) {
		a, err = p.analyzeTranscript(inputPath, update)
	} else {
		a, err = p.analyzeAudio(ctx, inputPath, opts.TargetSections, update)
	}
	if err != nil {
		return nil, err
	}
	a.Source.Path = opts.Input
	a.AnalyzedAt = time.Now().UTC()

	if opts.CueSource != "" {
		if err := p.applyCues(ctx, a.Timeline, opts.CueSource); err != nil {
			return nil, err
		}
	}

	update(progress.StageRendering, 90, "Rendering report")
	slug := Slugify(a.Source.Name)
	artifacts, err := p.renderer.Render(&domain.Report{Analysis: a, Detailed: opts.Detailed}, slug, opts.Formats)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if opts.Detailed && a.Source.Kind == domain.SourceAudio {
		update(progress.StageRendering, 95, "Extracting section clips")
		clips, err := p.extractSectionClips(ctx, inputPath, a.Timeline, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to extract section clips: %w", err)
		}
		artifacts = append(artifacts, clips...)
	}

	published, err := p.store.Publish(slug)
	if err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}
	if len(published) > 0 {
		artifacts = published
	}

	update(progress.StageComplete, 100, "Analysis complete")
	p.logger.Info("analysis complete", "input", opts.Input, "slug", slug, "sections", len(a.Timeline.Sections))

	return &Result{
		Input:     opts.Input,
		Slug:      slug,
		Analysis:  a,
		Artifacts: artifacts,
	}, nil
}

// resolveInput downloads remote inputs into a temporary directory and
// returns a local path plus a cleanup function.
func (p *Pipeline) resolveInput(ctx context.Context, input string, update func(progress.Stage, float64, string)) (string, func(), error) {
	if !downloader.IsRemote(input) {
		if _, err := os.Stat(input); err != nil {
			return "", nil, fmt.Errorf("input file not found: %s", input)
		}
		return input, func() {}, nil
	}

	update(progress.StageDownloading, 5, "Downloading input")

	tempDir := filepath.Join(os.TempDir(), "timing-analyze", fmt.Sprintf("dl_%d", time.Now().UnixNano()))
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(tempDir) }

	dl := downloader.NewHTTPDownloader()
	if !dl.SupportsURL(input) {
		cleanup()
		return "", nil, fmt.Errorf("unsupported URL: %s", input)
	}

	path, err := dl.Download(ctx, input, tempDir)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to download input: %w", err)
	}
	return path, cleanup, nil
}

func (p *Pipeline) analyzeAudio(ctx context.Context, path string, targetSections int, update func(progress.Stage, float64, string)) (*domain.Analysis, error) {
	update(progress.StageDecoding, 25, "Decoding audio")

	probe, err := p.engine.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe audio: %w", err)
	}

	analysisCfg := p.cfg.Analysis
	if targetSections > 0 {
		analysisCfg.TargetSections = targetSections
	}
	analyzer := analysis.NewAnalyzer(analysisCfg)

	samples, err := p.engine.Decode(ctx, path, analyzer.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}

	update(progress.StageAnalyzing, 50, "Extracting timing features")

	result, err := analyzer.Analyze(samples)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	return &domain.Analysis{
		Source: domain.SourceInfo{
			Path:       path,
			Name:       filepath.Base(path),
			Kind:       domain.SourceAudio,
			SampleRate: probe.SampleRate,
			Channels:   probe.Channels,
		},
		Duration:    result.Duration,
		Tempo:       result.Tempo,
		BeatTimes:   result.BeatTimes,
		OnsetTimes:  result.OnsetTimes,
		EnergyPeaks: result.EnergyPeaks,
		Energy:      result.Energy,
		Timeline:    result.Timeline,
	}, nil
}

func (p *Pipeline) analyzeTranscript(path string, update func(progress.Stage, float64, string)) (*domain.Analysis, error) {
	update(progress.StageAnalyzing, 50, "Segmenting transcript")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	doc, err := transcript.Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}

	timeline, err := transcript.Segment(doc, transcript.DefaultGapSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to segment transcript: %w", err)
	}

	return &domain.Analysis{
		Source: domain.SourceInfo{
			Path: path,
			Name: filepath.Base(path),
			Kind: domain.SourceTranscript,
		},
		Duration: timeline.Duration,
		Timeline: timeline,
	}, nil
}

// extractSectionClips cuts one audio clip per section into the report
// directory so detailed reports ship listenable excerpts alongside the
// rendered artifacts. Clips reuse the input's container when clips can
// be written in it, and fall back to mp3 otherwise.
func (p *Pipeline) extractSectionClips(ctx context.Context, inputPath string, timeline *domain.Timeline, slug string) ([]string, error) {
	dir, err := p.store.CreateReportDir(slug)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(filepath.Ext(inputPath), ".")
	if !audio.IsSupportedClipExtension(ext) {
		ext = "mp3"
	}

	clips := make([]string, 0, len(timeline.Sections))
	for _, section := range timeline.Sections {
		name := fmt.Sprintf("clip_%02d_%s.%s", section.Index, Slugify(section.Label), ext)
		outputPath := filepath.Join(dir, name)

		err := p.engine.ExtractClip(ctx, audio.ClipParams{
			InputPath:     inputPath,
			OutputPath:    outputPath,
			FileExtension: ext,
			StartSeconds:  section.Start,
			EndSeconds:    section.End,
			Label:         section.Label,
		})
		if err != nil {
			return nil, fmt.Errorf("section %d (%s): %w", section.Index, section.Label, err)
		}
		clips = append(clips, outputPath)
		p.logger.Debug("extracted section clip", "section", section.Index, "clip", name)
	}

	return clips, nil
}

func (p *Pipeline) applyCues(ctx context.Context, timeline *domain.Timeline, source string) error {
	sheet, err := p.importer.Import(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to import cue sheet: %w", err)
	}
	cues.Apply(timeline, sheet)
	p.logger.Info("applied cue sheet", "source", source, "cues", len(sheet.Cues))
	return nil
}

// Slugify derives a filesystem and URL safe report directory name from
// an input file name.
func Slugify(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "", "?", "",
		"\"", "", "<", "", ">", "", "|", "-", " ", "_",
	)
	slug := replacer.Replace(strings.TrimSpace(base))
	slug = strings.Trim(slug, "._-")
	if slug == "" {
		slug = "report"
	}
	return strings.ToLower(slug)
}
