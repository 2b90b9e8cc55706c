package job

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcw/timing-analyze/internal/domain"
	"github.com/marcw/timing-analyze/internal/progress"
)

func TestCreateAndGetJob(t *testing.T) {
	m := NewManager()

	created, ctx := m.CreateJob("song.mp3")
	require.NotNil(t, ctx)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, "song.mp3", created.Input)

	got, err := m.GetJob(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetJobNotFound(t *testing.T) {
	m := NewManager()

	_, err := m.GetJob("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelJob(t *testing.T) {
	m := NewManager()

	created, ctx := m.CreateJob("song.mp3")
	require.NoError(t, m.CancelJob(created.ID))

	assert.Equal(t, StatusCancelled, created.Status)
	assert.NotNil(t, created.EndTime)

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected job context to be cancelled")
	}

	// Cancelling a finished job is invalid
	err := m.CancelJob(created.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestJobLifecycle(t *testing.T) {
	m := NewManager()

	created, _ := m.CreateJob("song.mp3")

	m.SetProcessing(created)
	assert.Equal(t, StatusProcessing, created.Status)

	analysis := &domain.Analysis{Duration: 120}
	m.SetCompleted(created, analysis, []string{"reports/song/report.json"})
	assert.Equal(t, StatusCompleted, created.Status)
	assert.Equal(t, float64(ProgressComplete), created.Progress)
	assert.Same(t, analysis, created.Analysis)
	assert.Len(t, created.Results, 1)
	assert.NotNil(t, created.EndTime)
}

func TestSetFailed(t *testing.T) {
	m := NewManager()

	created, _ := m.CreateJob("song.mp3")
	m.SetProcessing(created)
	m.SetFailed(created, errors.New("decode error"))

	assert.Equal(t, StatusFailed, created.Status)
	assert.Equal(t, "decode error", created.Error)
}

func TestCompletionDoesNotOverrideCancellation(t *testing.T) {
	m := NewManager()

	created, _ := m.CreateJob("song.mp3")
	require.NoError(t, m.CancelJob(created.ID))

	m.SetCompleted(created, nil, nil)
	assert.Equal(t, StatusCancelled, created.Status)
}

func TestSnapshotNotFound(t *testing.T) {
	m := NewManager()

	_, err := m.Snapshot("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotWhileRecordingEvents(t *testing.T) {
	m := NewManager()

	created, _ := m.CreateJob("song.mp3")
	m.SetProcessing(created)

	const events = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < events; i++ {
			m.RecordEvent(created, progress.Event{
				Stage:    progress.StageAnalyzing,
				Progress: float64(i) / events * 100,
				Message:  "analyzing",
			})
		}
	}()

	// Readers take snapshots while the writer is still appending; each
	// snapshot must be internally consistent and safe to marshal.
	for i := 0; i < 50; i++ {
		snap, err := m.Snapshot(created.ID)
		require.NoError(t, err)
		_, err = json.Marshal(snap)
		require.NoError(t, err)
	}
	<-done

	snap, err := m.Snapshot(created.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Events, events)
	assert.Equal(t, "analyzing", snap.Message)

	// The snapshot is detached from the live job
	m.RecordEvent(created, progress.Event{Stage: progress.StageRendering, Message: "rendering"})
	assert.Len(t, snap.Events, events)
	assert.Equal(t, "analyzing", snap.Message)
}

func TestListJobsPagination(t *testing.T) {
	m := NewManager()

	for i := 0; i < 15; i++ {
		m.CreateJob("song.mp3")
	}

	resp := m.ListJobs(1, 10)
	assert.Len(t, resp.Jobs, 10)
	assert.Equal(t, 15, resp.TotalJobs)
	assert.Equal(t, 2, resp.TotalPages)

	resp = m.ListJobs(2, 10)
	assert.Len(t, resp.Jobs, 5)

	resp = m.ListJobs(3, 10)
	assert.Empty(t, resp.Jobs)
}

func TestValidateMaxConcurrentTasks(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{
			name:     "zero value returns default",
			input:    0,
			expected: DefaultMaxConcurrentTasks,
		},
		{
			name:     "negative value returns default",
			input:    -1,
			expected: DefaultMaxConcurrentTasks,
		},
		{
			name:     "valid value within range",
			input:    10,
			expected: 10,
		},
		{
			name:     "value at max limit",
			input:    MaxAllowedConcurrentTasks,
			expected: MaxAllowedConcurrentTasks,
		},
		{
			name:     "excessive value is capped",
			input:    1000,
			expected: MaxAllowedConcurrentTasks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateMaxConcurrentTasks(tt.input)
			if result != tt.expected {
				t.Errorf("ValidateMaxConcurrentTasks(%d) = %d, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}
