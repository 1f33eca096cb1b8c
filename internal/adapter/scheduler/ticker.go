package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/ports"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

// Ticker fires pending frame callbacks from a single goroutine at a fixed rate.
// Callbacks run on that goroutine, one batch per tick.
type Ticker struct {
	q        queue
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewTicker starts a ticker at fps frames per second (DefaultFPS if fps <= 0).
// Close must be called to stop its goroutine.
func NewTicker(fps int, logger *slog.Logger) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &Ticker{
		interval: time.Second / time.Duration(fps),
		logger:   logger.With("component", "scheduler"),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go t.run()
	t.logger.Debug("frame ticker started", "fps", fps)
	return t
}

// Interval returns the time between frames.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// RequestFrame implements ports.FrameScheduler. After Close it returns 0 and
// the callback never runs.
func (t *Ticker) RequestFrame(cb ports.FrameCallback) ports.FrameID {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return 0
	}
	return t.q.add(cb)
}

// CancelFrame implements ports.FrameScheduler.
func (t *Ticker) CancelFrame(id ports.FrameID) {
	t.q.cancel(id)
}

func (t *Ticker) run() {
	defer close(t.doneChan)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopChan:
			return
		case now := <-ticker.C:
			for _, r := range t.q.take() {
				r.cb(now)
			}
		}
	}
}

// Close stops the goroutine and drops pending callbacks. Safe to call more
// than once, but not from inside a frame callback.
func (t *Ticker) Close() error {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()

		close(t.stopChan)
		<-t.doneChan
		t.q.take()
		t.logger.Debug("frame ticker stopped")
	})
	return nil
}
