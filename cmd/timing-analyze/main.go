package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcw/timing-analyze/config"
	"github.com/marcw/timing-analyze/internal/domain"
	"github.com/marcw/timing-analyze/internal/pipeline"
	"github.com/marcw/timing-analyze/internal/report"
	"github.com/marcw/timing-analyze/internal/storage"
)

func main() {
	detailed := flag.Bool("detailed", false, "Include the per-second energy table in the report")
	formats := flag.String("format", "all", "Comma separated artifact formats: txt, json, md, or all")
	cueSource := flag.String("cues", "", "Optional cue sheet (CSV or HTML, path or URL) used to label sections")
	sections := flag.Int("sections", 0, "Target number of sections (0 uses the configured default)")
	workers := flag.Int("workers", 4, "Maximum concurrent inputs when analyzing multiple files")
	configPath := flag.String("config", "", "Path to a YAML configuration file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input> [input...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Inputs are audio files, transcripts (.srt, .vtt) or HTTP(S) URLs.")
		fmt.Fprintln(flag.CommandLine.Output(), "Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	parsedFormats, err := report.ParseFormats(*formats)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg, store)

	if len(inputs) == 1 {
		result, err := p.Run(ctx, pipeline.Options{
			Input:          inputs[0],
			Detailed:       *detailed,
			Formats:        parsedFormats,
			CueSource:      *cueSource,
			TargetSections: *sections,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		printResult(result)
		return
	}

	results, err := p.RunBatch(ctx, pipeline.BatchOptions{
		Inputs:         inputs,
		Detailed:       *detailed,
		Formats:        parsedFormats,
		CueSource:      *cueSource,
		TargetSections: *sections,
		Workers:        *workers,
		ShowProgress:   true,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Println()
	for _, result := range results {
		printResult(result)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("./config/config.yaml"); err == nil {
		return config.Load("./config/config.yaml")
	}
	return config.Default(), nil
}

func printResult(result *pipeline.Result) {
	a := result.Analysis
	fmt.Printf("%s: %s", result.Input, domain.FormatTimestamp(a.Duration))
	if a.Tempo > 0 {
		fmt.Printf(", %.1f BPM", a.Tempo)
	}
	fmt.Printf(", %d sections\n", len(a.Timeline.Sections))
	for _, artifact := range result.Artifacts {
		fmt.Printf("  %s\n", artifact)
	}
}
