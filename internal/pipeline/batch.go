package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/marcw/timing-analyze/internal/job"
	"github.com/marcw/timing-analyze/internal/report"
)

// BatchOptions control a multi-input run.
type BatchOptions struct {
	Inputs         []string
	Detailed       bool
	Formats        []report.Format
	CueSource      string
	TargetSections int
	Workers        int

	// ShowProgress renders a terminal progress bar over the batch.
	ShowProgress bool
}

// RunBatch analyzes every input through a bounded worker pool and
// returns one result per successful input. The first failure cancels
// the remaining work.
func (p *Pipeline) RunBatch(ctx context.Context, opts BatchOptions) ([]*Result, error) {
	if len(opts.Inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}

	workers := job.ValidateMaxConcurrentTasks(opts.Workers)

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(
			len(opts.Inputs),
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionFullWidth(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Analyzing inputs...[reset]"),
		)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)
	errCh := make(chan error, 1)

	results := make([]*Result, len(opts.Inputs))

	for i, input := range opts.Inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer func() {
				if bar != nil {
					bar.Add(1)
				}
				wg.Done()
			}()

			select {
			case <-ctx.Done():
				return
			default:
			}

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			result, runErr := p.Run(ctx, Options{
				Input:          input,
				Detailed:       opts.Detailed,
				Formats:        opts.Formats,
				CueSource:      opts.CueSource,
				TargetSections: opts.TargetSections,
			})
			if runErr != nil {
				select {
				case errCh <- fmt.Errorf("input %d (%s): %w", i+1, input, runErr):
					cancel()
				default:
				}
				return
			}
			results[i] = result
		}(i, input)
	}

	go func() {
		wg.Wait()
		close(errCh)
	}()

	if err := <-errCh; err != nil {
		return nil, err
	}

	completed := make([]*Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			completed = append(completed, r)
		}
	}
	return completed, nil
}
