package animation

import "sync"

// Group pauses, resumes and stops a set of tweens together.
type Group struct {
	mu     sync.Mutex
	tweens []*Tween
}

// Add registers tweens with the group.
func (g *Group) Add(tweens ...*Tween) {
	g.mu.Lock()
	g.tweens = append(g.tweens, tweens...)
	g.mu.Unlock()
}

// Len returns the number of tweens in the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tweens)
}

// SetPlaying pauses or resumes every tween.
func (g *Group) SetPlaying(playing bool) {
	for _, t := range g.snapshot() {
		if playing {
			t.Resume()
		} else {
			t.Pause()
		}
	}
}

// StopAll stops every tween and empties the group.
func (g *Group) StopAll() {
	for _, t := range g.snapshot() {
		t.Stop()
	}
	g.mu.Lock()
	g.tweens = nil
	g.mu.Unlock()
}

func (g *Group) snapshot() []*Tween {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Tween, len(g.tweens))
	copy(out, g.tweens)
	return out
}
