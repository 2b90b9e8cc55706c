package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/marcw/timing-analyze/internal/domain"
	"github.com/marcw/timing-analyze/internal/progress"
)

// Manager handles job management
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Status
}

// NewManager creates a new job manager
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Status),
	}
}

// CreateJob creates a new job for the given input
func (m *Manager) CreateJob(input string) (*Status, context.Context) {
	jobID := fmt.Sprintf("%d", time.Now().UnixNano())
	ctx, cancel := context.WithCancel(context.Background())

	job := &Status{
		ID:         jobID,
		Status:     StatusPending,
		Progress:   0,
		Message:    "Job created",
		StartTime:  time.Now(),
		Input:      input,
		cancelFunc: cancel,
	}

	m.mu.Lock()
	m.jobs[jobID] = job
	m.mu.Unlock()

	return job, ctx
}

// GetJob retrieves a job by ID
func (m *Manager) GetJob(jobID string) (*Status, error) {
	m.mu.RLock()
	job, exists := m.jobs[jobID]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return job, nil
}

// Snapshot returns a copy of a job's state, safe to read and marshal
// while the job is still being updated.
func (m *Manager) Snapshot(jobID string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, exists := m.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return job.copy(), nil
}

// RecordEvent applies a progress event to a job.
func (m *Manager) RecordEvent(job *Status, event progress.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Progress = event.Progress
	job.Message = event.Message
	job.Events = append(job.Events, event)
}

// CancelJob cancels a job
func (m *Manager) CancelJob(jobID string) error {
	job, err := m.GetJob(jobID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if job.Status != StatusProcessing && job.Status != StatusPending {
		return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
	}

	job.cancelFunc()
	job.Status = StatusCancelled
	job.Message = "Job cancelled by user"
	endTime := time.Now()
	job.EndTime = &endTime

	return nil
}

// ListJobs lists all jobs with pagination, newest first
func (m *Manager) ListJobs(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.RLock()
	jobs := make([]*Status, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.copy())
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(jobs) {
		return &Response{
			Jobs:       []*Status{},
			Page:       page,
			PageSize:   pageSize,
			TotalJobs:  len(jobs),
			TotalPages: (len(jobs) + pageSize - 1) / pageSize,
		}
	}

	if end > len(jobs) {
		end = len(jobs)
	}

	return &Response{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  len(jobs),
		TotalPages: (len(jobs) + pageSize - 1) / pageSize,
	}
}

// SetProcessing marks a job as running
func (m *Manager) SetProcessing(job *Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = StatusProcessing
	job.Message = "Analysis in progress"
}

// SetCompleted marks a job as finished with its analysis and result
// artifacts.
func (m *Manager) SetCompleted(job *Status, analysis *domain.Analysis, results []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.Status == StatusCancelled {
		return
	}
	job.Status = StatusCompleted
	job.Progress = ProgressComplete
	job.Message = "Analysis complete"
	job.Analysis = analysis
	job.Results = results
	endTime := time.Now()
	job.EndTime = &endTime
}

// SetFailed marks a job as failed
func (m *Manager) SetFailed(job *Status, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.Status == StatusCancelled {
		return
	}
	job.Status = StatusFailed
	job.Message = "Analysis failed"
	job.Error = err.Error()
	endTime := time.Now()
	job.EndTime = &endTime
}
