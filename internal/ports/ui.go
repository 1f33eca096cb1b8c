// Package ports define the view and scheduling interfaces used by the core.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/govis/internal/domain"
)

// FrameID identifies a pending frame request.
type FrameID uint64

// FrameCallback receives the frame timestamp.
type FrameCallback func(now time.Time)

// FrameScheduler is the Go counterpart of requestAnimationFrame.
// Each RequestFrame schedules exactly one callback for the next frame.
//
// Thread-safety: implementations must allow RequestFrame and CancelFrame to be
// called from inside a callback.
type FrameScheduler interface {
	// RequestFrame schedules cb for the next frame and returns its ID.
	RequestFrame(cb FrameCallback) FrameID

	// CancelFrame cancels a pending request. Unknown IDs are ignored.
	CancelFrame(id FrameID)
}

// LyricView displays the active lyric line and its reveal sweep.
type LyricView interface {
	// ShowLine replaces the displayed line.
	ShowLine(line domain.TimedLine)

	// SetReveal sets the reveal sweep position (0 to 100 percent).
	SetReveal(percent float64)

	// ClearLine removes the displayed line and resets the sweep.
	ClearLine()
}
