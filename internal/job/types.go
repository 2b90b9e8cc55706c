package job

import (
	"context"
	"time"

	"github.com/marcw/timing-analyze/internal/domain"
	"github.com/marcw/timing-analyze/internal/progress"
)

// Constants for job status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Constants for progress percentages
const (
	ProgressDownloadStart = 0
	ProgressDownloadEnd   = 25
	ProgressAnalysisStart = 25
	ProgressAnalysisEnd   = 90
	ProgressRenderStart   = 90
	ProgressRenderEnd     = 99
	ProgressComplete      = 100
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Constants for configuration
const (
	DefaultMaxConcurrentTasks = 4
	MaxAllowedConcurrentTasks = 16
)

// ValidateMaxConcurrentTasks clamps a requested concurrency to a sane range.
func ValidateMaxConcurrentTasks(n int) int {
	if n <= 0 {
		return DefaultMaxConcurrentTasks
	}
	if n > MaxAllowedConcurrentTasks {
		return MaxAllowedConcurrentTasks
	}
	return n
}

// Status represents the current state of an analysis job.
type Status struct {
	ID         string           `json:"id"`
	Status     string           `json:"status"`
	Progress   float64          `json:"progress"`
	Message    string           `json:"message"`
	Error      string           `json:"error,omitempty"`
	Results    []string         `json:"results,omitempty"`
	Events     []progress.Event `json:"events"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    *time.Time       `json:"endTime,omitempty"`
	Input      string           `json:"input"`
	Analysis   *domain.Analysis `json:"analysis,omitempty"`
	cancelFunc context.CancelFunc
}

// copy duplicates the status so it can be read outside the manager's
// lock. The caller must hold the lock. Events and Results get their
// own backing arrays; the analysis pointer is shared because it is
// never mutated after completion.
func (s *Status) copy() *Status {
	c := *s
	c.Events = append([]progress.Event(nil), s.Events...)
	c.Results = append([]string(nil), s.Results...)
	return &c
}

// Request represents the request body for analyzing an input
type Request struct {
	Input              string `json:"input" binding:"required"`
	Detailed           bool   `json:"detailed"`
	Formats            string `json:"formats"`
	CueSource          string `json:"cueSource"`
	TargetSections     int    `json:"targetSections"`
	MaxConcurrentTasks int    `json:"maxConcurrentTasks"`
}

// Response represents the response for job status
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalJobs  int       `json:"totalJobs"`
	TotalPages int       `json:"totalPages"`
}
