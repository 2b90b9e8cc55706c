package progress

import (
	"encoding/json"
	"reflect"
	"sync"
	"time"
)

// Stage represents the current stage of an analysis run
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageDownloading  Stage = "downloading"
	StageDecoding     Stage = "decoding"
	StageAnalyzing    Stage = "analyzing"
	StageRendering    Stage = "rendering"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
)

// Event represents a progress event
type Event struct {
	Stage        Stage         `json:"stage"`
	Progress     float64       `json:"progress"`
	Message      string        `json:"message"`
	Data         []byte        `json:"data,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	InputDetails *InputDetails `json:"inputDetails,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// InputDetails contains information about the current input being analyzed
type InputDetails struct {
	InputNumber     int    `json:"inputNumber"`
	TotalInputs     int    `json:"totalInputs"`
	CurrentInput    string `json:"currentInput"`
	ProcessedInputs int    `json:"processedInputs"`
}

// Tracker manages progress tracking for a single analysis run
type Tracker struct {
	mu           sync.RWMutex
	stage        Stage
	progress     float64
	message      string
	inputDetails *InputDetails
	error        error
	listeners    []func(Event)
}

// NewTracker creates a new Tracker instance
func NewTracker() *Tracker {
	return &Tracker{
		stage:     StageInitializing,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// RemoveListener removes a progress event listener
func (t *Tracker) RemoveListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	listenerPtr := reflect.ValueOf(listener).Pointer()
	for i := range t.listeners {
		if reflect.ValueOf(t.listeners[i]).Pointer() == listenerPtr {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			break
		}
	}
}

// Update updates the progress and notifies all listeners
func (t *Tracker) Update(stage Stage, progress float64, message string, data []byte) {
	t.mu.Lock()
	t.stage = stage
	t.progress = progress
	t.message = message
	t.mu.Unlock()

	t.notifyListeners(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// UpdateInput updates per-input progress for batch runs
func (t *Tracker) UpdateInput(inputNumber, totalInputs, processedInputs int, currentInput string) {
	t.mu.Lock()
	t.inputDetails = &InputDetails{
		InputNumber:     inputNumber,
		TotalInputs:     totalInputs,
		CurrentInput:    currentInput,
		ProcessedInputs: processedInputs,
	}
	t.mu.Unlock()

	t.notifyListeners(Event{
		Stage:        t.stage,
		Progress:     t.progress,
		Message:      t.message,
		Timestamp:    time.Now(),
		InputDetails: t.inputDetails,
	})
}

// SetError sets an error state and notifies all listeners
func (t *Tracker) SetError(err error) {
	t.mu.Lock()
	t.stage = StageError
	t.error = err
	t.mu.Unlock()

	t.notifyListeners(Event{
		Stage:     StageError,
		Progress:  t.progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// notifyListeners sends an event to all registered listeners
func (t *Tracker) notifyListeners(event Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, listener := range t.listeners {
		listener(event)
	}
}

// GetCurrentState returns the current progress state
func (t *Tracker) GetCurrentState() Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	event := Event{
		Stage:        t.stage,
		Progress:     t.progress,
		Message:      t.message,
		Timestamp:    time.Now(),
		InputDetails: t.inputDetails,
	}
	if t.error != nil {
		event.Error = t.error.Error()
	}
	return event
}

// MarshalJSON implements json.Marshaler for Event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Event
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = t
	return nil
}
