// Package scheduler provides ports.FrameScheduler implementations.
package scheduler

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/ports"
)

type request struct {
	id ports.FrameID
	cb ports.FrameCallback
}

// queue holds pending frame requests. Callbacks requested while a batch is
// firing land in the next batch.
type queue struct {
	mu      sync.Mutex
	nextID  ports.FrameID
	pending []request
}

func (q *queue) add(cb ports.FrameCallback) ports.FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending = append(q.pending, request{id: q.nextID, cb: cb})
	return q.nextID
}

func (q *queue) cancel(id ports.FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, r := range q.pending {
		if r.id == id {
			q.pending = append(q.pending[:i:i], q.pending[i+1:]...)
			return
		}
	}
}

func (q *queue) take() []request {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Manual fires frames only when told to. Used by tests and headless runs.
type Manual struct {
	q queue
}

// NewManual creates a manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// RequestFrame implements ports.FrameScheduler.
func (m *Manual) RequestFrame(cb ports.FrameCallback) ports.FrameID {
	return m.q.add(cb)
}

// CancelFrame implements ports.FrameScheduler.
func (m *Manual) CancelFrame(id ports.FrameID) {
	m.q.cancel(id)
}

// Fire runs every callback pending at the time of the call and returns how many ran.
func (m *Manual) Fire(now time.Time) int {
	batch := m.q.take()
	for _, r := range batch {
		r.cb(now)
	}
	return len(batch)
}

// Pending returns the number of queued callbacks.
func (m *Manual) Pending() int {
	return m.q.len()
}
