package web

import (
	"fmt"
	"sync"
)

// ExportQueue limits how many export jobs transcode at once. Jobs past the
// limit wait in submission order; a waiting job still exists in the registry
// as pending, so callers can poll it immediately.
type ExportQueue struct {
	maxRunning int
	running    int
	waiting    []func()
	mutex      sync.Mutex
}

// NewExportQueue creates a queue running at most maxRunning jobs at a time.
func NewExportQueue(maxRunning int) *ExportQueue {
	if maxRunning < 1 {
		maxRunning = 1
	}
	return &ExportQueue{maxRunning: maxRunning}
}

// Submit starts the job now if a slot is free, otherwise queues it.
func (eq *ExportQueue) Submit(run func()) {
	eq.mutex.Lock()
	defer eq.mutex.Unlock()

	if eq.running < eq.maxRunning {
		eq.running++
		go eq.runJob(run)
		return
	}

	eq.waiting = append(eq.waiting, run)
	fmt.Printf("Export queued. Queue length: %d\n", len(eq.waiting))
}

func (eq *ExportQueue) runJob(run func()) {
	run()

	eq.mutex.Lock()
	defer eq.mutex.Unlock()

	if len(eq.waiting) > 0 {
		next := eq.waiting[0]
		eq.waiting = eq.waiting[1:]
		go eq.runJob(next)
		return
	}
	eq.running--
}
