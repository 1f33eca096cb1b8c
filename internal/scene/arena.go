package scene

import "sync"

// Arena owns a renderer's shapes, indexed by creation order.
// No shape is ever shared between arenas.
//
// Thread-safety: writers mutate shapes inside Update, readers inside View.
type Arena struct {
	mu     sync.RWMutex
	shapes []Shape
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// AddCircle stores a copy of c and returns the arena-owned pointer.
func (a *Arena) AddCircle(c Circle) *Circle {
	p := &c
	a.add(p)
	return p
}

// AddLine stores a copy of l and returns the arena-owned pointer.
func (a *Arena) AddLine(l Line) *Line {
	p := &l
	a.add(p)
	return p
}

// AddPath stores a copy of p and returns the arena-owned pointer.
func (a *Arena) AddPath(path Path) *Path {
	p := &path
	a.add(p)
	return p
}

// AddImage stores a copy of img and returns the arena-owned pointer.
func (a *Arena) AddImage(img Image) *Image {
	p := &img
	a.add(p)
	return p
}

func (a *Arena) add(s Shape) {
	a.mu.Lock()
	a.shapes = append(a.shapes, s)
	a.mu.Unlock()
}

// Update runs fn with exclusive access to the shapes.
func (a *Arena) Update(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

// View runs fn with shared access to the shapes in creation order.
// fn must not retain the slice.
func (a *Arena) View(fn func(shapes []Shape)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	fn(a.shapes)
}

// Len returns the number of shapes.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.shapes)
}

// Snapshot returns deep copies of every shape.
func (a *Arena) Snapshot() []Shape {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Shape, len(a.shapes))
	for i, s := range a.shapes {
		out[i] = s.clone()
	}
	return out
}

// Clear drops every shape. Pointers handed out earlier become detached.
func (a *Arena) Clear() {
	a.mu.Lock()
	a.shapes = nil
	a.mu.Unlock()
}
