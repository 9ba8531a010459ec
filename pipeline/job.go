// Package pipeline turns a finished mix plan into one output video. A job
// walks a fixed stage sequence (intro, segments, outro, transition joins,
// commentary, finalize) against an external transcoder, reporting progress
// through observers. Terminal states are absorbing and cleanup always runs.
package pipeline

import (
	"sync"

	"github.com/google/uuid"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending       Status = "pending"
	StatusFetching      Status = "fetching"
	StatusProcessing    Status = "processing"
	StatusConcatenating Status = "concatenating"
	StatusEncoding      Status = "encoding"
	StatusComplete      Status = "complete"
	StatusFailed        Status = "failed"
	StatusCancelled     Status = "cancelled"
)

// Terminal reports whether no further state changes are possible.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed || s == StatusCancelled
}

// Progress is an immutable snapshot of a job, safe to hand to callers.
type Progress struct {
	ID            string   `json:"id"`
	Status        Status   `json:"status"`
	Progress      float64  `json:"progress"` // 0-100
	Stage         string   `json:"current_stage"`
	SegmentIndex  int      `json:"segment_index"`
	TotalSegments int      `json:"total_segments"`
	Error         string   `json:"error,omitempty"`
	OutputPath    string   `json:"output_path,omitempty"`
	Duration      float64  `json:"duration,omitempty"`
	SizeBytes     int64    `json:"size_bytes,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Observer receives every progress change of one job. Called synchronously
// from the pipeline goroutine; keep it fast.
type Observer func(Progress)

// Job is the mutable state of one composition run. The owning pipeline is
// the only writer; any goroutine may read snapshots or request cancellation.
type Job struct {
	ID string

	mu        sync.RWMutex
	state     Progress
	observers []Observer
	cancelled bool
}

// NewJob creates a pending job with a fresh id.
func NewJob() *Job {
	id := uuid.NewString()
	return &Job{
		ID:    id,
		state: Progress{ID: id, Status: StatusPending},
	}
}

// Snapshot returns the job's current state. Warnings are copied so the
// caller cannot race the pipeline's appends.
func (j *Job) Snapshot() Progress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	snap := j.state
	snap.Warnings = append([]string(nil), j.state.Warnings...)
	return snap
}

// Subscribe registers an observer for all subsequent changes.
func (j *Job) Subscribe(fn Observer) {
	j.mu.Lock()
	j.observers = append(j.observers, fn)
	j.mu.Unlock()
}

// Cancel requests cooperative cancellation. The pipeline observes the flag
// between stages and before each segment; cleanup still runs.
func (j *Job) Cancel() {
	j.mu.Lock()
	j.cancelled = true
	j.mu.Unlock()
}

// Cancelled reports whether cancellation was requested.
func (j *Job) Cancelled() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.cancelled
}

// update applies a mutation and notifies observers. Once a job is terminal,
// further updates are ignored so a slow stage cannot resurrect a cancelled
// or failed job.
func (j *Job) update(mutate func(*Progress)) {
	j.mu.Lock()
	if j.state.Status.Terminal() {
		j.mu.Unlock()
		return
	}
	mutate(&j.state)
	snap := j.state
	snap.Warnings = append([]string(nil), j.state.Warnings...)
	observers := append([]Observer(nil), j.observers...)
	j.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func (j *Job) setStage(status Status, progress float64, stage string) {
	j.update(func(p *Progress) {
		p.Status = status
		p.Progress = progress
		p.Stage = stage
	})
}

func (j *Job) setSegment(index, total int) {
	j.update(func(p *Progress) {
		p.SegmentIndex = index
		p.TotalSegments = total
	})
}

func (j *Job) warn(msg string) {
	j.update(func(p *Progress) {
		p.Warnings = append(p.Warnings, msg)
	})
}

func (j *Job) fail(stage string, err error) {
	j.update(func(p *Progress) {
		p.Status = StatusFailed
		p.Stage = stage
		p.Error = err.Error()
	})
}

func (j *Job) markCancelled() {
	j.update(func(p *Progress) {
		p.Status = StatusCancelled
	})
}

func (j *Job) complete(outputPath string, duration float64, sizeBytes int64) {
	j.update(func(p *Progress) {
		p.Status = StatusComplete
		p.Progress = 100
		p.Stage = "complete"
		p.OutputPath = outputPath
		p.Duration = duration
		p.SizeBytes = sizeBytes
	})
}
