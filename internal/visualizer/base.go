package visualizer

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/smoothing"
)

const (
	discRadiusRatio = 0.18 // center disc radius as fraction of min(w,h)
	discPeriod      = 12 * time.Second
	maxMagnitude    = 255.0
)

// base is embedded by every variant. It owns the arena, the animation group
// and the rotating center disc, and serializes Mount, OnData and Unmount.
type base struct {
	kind   Type
	clock  animation.Clock
	rng    *rand.Rand
	logger *slog.Logger

	arena *scene.Arena
	anims animation.Group
	loops []*animation.Repeater // canceled on Unmount

	// decorate starts decorative animations on the first Playing transition
	// after Mount. Runs with mu held.
	decorate func()

	mu        sync.Mutex
	mounted   bool
	playing   bool
	decorated bool
	vp        domain.Viewport
	cx, cy    float64
	radius    float64 // disc radius; patterns start outside it

	rotation  *animation.Tween
	cover     *scene.Image
	discShape *scene.Circle
}

func (b *base) init(kind Type, deps Deps) {
	deps = deps.withDefaults()
	b.kind = kind
	b.clock = deps.Clock
	b.rng = deps.Rand
	b.logger = deps.Logger.With("component", "visualizer", "type", string(kind))
	b.arena = scene.NewArena()
}

// Type implements Renderer.
func (b *base) Type() Type {
	return b.kind
}

// Arena implements Renderer.
func (b *base) Arena() *scene.Arena {
	return b.arena
}

// Mounted implements Renderer.
func (b *base) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

// mount validates the viewport, records its geometry, creates the center
// disc and then calls build for the variant's own shapes.
func (b *base) mount(vp domain.Viewport, build func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mounted {
		return domain.ErrAlreadyMounted
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return domain.NewValidationError("viewport", [2]float64{vp.Width, vp.Height}, "width and height must be positive")
	}

	b.vp = vp
	b.cx, b.cy = vp.Center()
	b.radius = vp.MinDim() * discRadiusRatio

	center := scene.Point{X: b.cx, Y: b.cy}
	if len(vp.Cover) > 0 {
		b.cover = b.arena.AddImage(scene.Image{
			Center:      center,
			Radius:      b.radius,
			Data:        vp.Cover,
			Placeholder: colorDisc,
			Opacity:     1,
			Visible:     true,
		})
	} else {
		b.discShape = b.arena.AddCircle(scene.Circle{
			Center:      center,
			Radius:      b.radius,
			Fill:        colorDisc,
			Stroke:      colorDiscEdge,
			StrokeWidth: 2,
			Opacity:     1,
			Visible:     true,
		})
	}

	b.rotation = animation.NewTween(b.clock, discPeriod, animation.WithRange(0, 2*math.Pi), animation.WithRepeat())
	b.rotation.StartPaused()
	b.anims.Add(b.rotation)

	if build != nil {
		build()
	}
	b.mounted = true

	if b.playing {
		b.rotation.Resume()
		b.decorateLocked()
	}

	b.logger.Debug("renderer mounted", "width", vp.Width, "height", vp.Height, "shapes", b.arena.Len())
	return nil
}

// OnPlayingChange implements Renderer.
func (b *base) OnPlayingChange(playing bool) {
	b.mu.Lock()
	b.playing = playing
	if playing {
		b.decorateLocked()
	}
	b.mu.Unlock()

	b.anims.SetPlaying(playing)
}

func (b *base) decorateLocked() {
	if !b.mounted || b.decorated || b.decorate == nil {
		return
	}
	b.decorate()
	b.decorated = true
}

// Unmount implements Renderer.
func (b *base) Unmount() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return
	}
	for _, r := range b.loops {
		r.Cancel()
	}
	b.loops = nil
	b.anims.StopAll()
	b.arena.Clear()
	b.rotation = nil
	b.cover = nil
	b.discShape = nil
	b.decorated = false
	b.mounted = false
	b.logger.Debug("renderer unmounted")
}

// repeat wraps a repeating tween created during mount so that Unmount
// cancels it.
func (b *base) repeat(tween *animation.Tween, onIteration func(int)) *animation.Repeater {
	r := animation.NewRepeater(tween, onIteration)
	b.loops = append(b.loops, r)
	return r
}

// frame runs the decimate+smooth pipeline and hands the values to apply
// inside the arena write lock. Unmounted renderers are skipped. An empty
// snapshot only turns the cover, leaving the previous geometry on screen.
func (b *base) frame(snapshot domain.FrequencySnapshot, stride, window int, decay float64, apply func(values []float64)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return
	}
	if snapshot.Empty() {
		b.arena.Update(b.rotateCoverLocked)
		return
	}
	values, err := smoothing.Prepare(snapshot, stride, window, decay)
	if err != nil || len(values) == 0 {
		b.logger.Debug("frame skipped", "error", err)
		b.arena.Update(b.rotateCoverLocked)
		return
	}

	b.arena.Update(func() {
		b.rotateCoverLocked()
		apply(values)
	})
}

func (b *base) rotateCoverLocked() {
	if b.cover != nil {
		b.cover.Rotation = b.rotation.Value()
	}
}

// level maps a smoothed magnitude onto [0,1] with a squared response.
func level(v float64) float64 {
	return clamp01(v * v / (maxMagnitude * maxMagnitude))
}

// angleAt returns the angle of point i of n, starting at the top and going clockwise.
func angleAt(i, n int) float64 {
	return float64(i)/float64(n)*2*math.Pi - math.Pi/2
}

// ringPoints places one point per value at radius base+level(v)*scale.
// dst is reused when it has room.
func (b *base) ringPoints(values []float64, baseRadius, scale float64, dst []scene.Point) []scene.Point {
	dst = dst[:0]
	n := len(values)
	for i, v := range values {
		dst = append(dst, scene.Polar(b.cx, b.cy, baseRadius+level(v)*scale, angleAt(i, n)))
	}
	return dst
}
