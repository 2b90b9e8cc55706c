package server

import (
	"context"
	"log/slog"

	"github.com/marcw/timing-analyze/internal/job"
	"github.com/marcw/timing-analyze/internal/pipeline"
	"github.com/marcw/timing-analyze/internal/progress"
	"github.com/marcw/timing-analyze/internal/report"
)

// runAnalysisInBackground executes a job's analysis and records its
// progress events on the job status.
func (s *Server) runAnalysisInBackground(ctx context.Context, j *job.Status, req job.Request) {
	s.jobs.SetProcessing(j)

	tracker := progress.NewTracker()
	tracker.AddListener(func(event progress.Event) {
		s.jobs.RecordEvent(j, event)
		slog.Debug("job progress", "jobId", j.ID, "stage", event.Stage, "progress", event.Progress)
	})

	formats, _ := report.ParseFormats(req.Formats)

	result, err := s.pipeline.Run(ctx, pipeline.Options{
		Input:          req.Input,
		Detailed:       req.Detailed,
		Formats:        formats,
		CueSource:      req.CueSource,
		TargetSections: req.TargetSections,
		Tracker:        tracker,
	})
	if err != nil {
		if ctx.Err() == context.Canceled {
			slog.Info("job cancelled", "jobId", j.ID)
			return
		}
		s.jobs.SetFailed(j, err)
		slog.Error("job failed", "jobId", j.ID, "error", err)
		return
	}

	s.jobs.SetCompleted(j, result.Analysis, result.Artifacts)
	slog.Info("job completed", "jobId", j.ID, "slug", result.Slug, "artifacts", len(result.Artifacts))
}
