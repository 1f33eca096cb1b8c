package visualizer

import (
	"fmt"
	"math"
	"time"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/smoothing"
)

const (
	pulseRings      = 3
	pulsePeriod     = 6 * time.Second
	pulseStagger    = 2 * time.Second
	pulseStride     = 2
	pulseWindow     = 5
	pulseDecay      = 0.6
	pulseReachRatio = 0.3 // expansion as fraction of min(w,h)
	pulseRingWidth  = 2.0
	pulseDotRadius  = 4.0
	pulseOrbit      = math.Pi / 2 // radians a dot travels per loop
)

type pulseRing struct {
	circle   *scene.Circle
	dot      *scene.Circle
	tween    *animation.Tween
	repeater *animation.Repeater
	start    float64 // dot start angle for the current loop
}

// RingPulse draws rings that repeatedly expand out of the disc and fade.
// Each ring carries a dot whose start angle is re-sampled from a salient
// point once per loop.
type RingPulse struct {
	base
	rings  []*pulseRing
	values []float64 // latest smoothed frame, read when a loop begins
}

// NewRingPulse creates a ring pulse renderer.
func NewRingPulse(deps Deps) (*RingPulse, error) {
	if err := smoothing.ValidateWindow(pulseWindow, pulseDecay); err != nil {
		return nil, fmt.Errorf("ring pulse: %w", err)
	}
	v := &RingPulse{}
	v.init(TypeRingPulse, deps)
	v.decorate = v.startRings
	return v, nil
}

// Mount implements Renderer.
func (v *RingPulse) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		center := scene.Point{X: v.cx, Y: v.cy}
		v.rings = make([]*pulseRing, pulseRings)
		for k := range v.rings {
			col := HSL(0.55+float64(k)*0.1, 0.9, 0.6, 255)
			ring := &pulseRing{
				circle: v.arena.AddCircle(scene.Circle{
					Center:      center,
					Radius:      v.radius,
					Stroke:      col,
					StrokeWidth: pulseRingWidth,
				}),
				dot: v.arena.AddCircle(scene.Circle{
					Center: center,
					Radius: pulseDotRadius,
					Fill:   colorHighlight,
				}),
				tween: animation.NewTween(v.clock, pulsePeriod,
					animation.WithDelay(time.Duration(k)*pulseStagger),
					animation.WithCurve(fyne.AnimationEaseOut),
					animation.WithRepeat(),
				),
			}
			ring.repeater = v.repeat(ring.tween, func(int) {
				idx := smoothing.PickSalientIndex(v.values, v.rng)
				n := max(len(v.values), 1)
				ring.start = angleAt(idx, n)
			})
			v.rings[k] = ring
		}
	})
}

// startRings kicks off the staggered loops on the first Playing transition.
func (v *RingPulse) startRings() {
	for _, ring := range v.rings {
		ring.repeater.Reset()
		ring.tween.Start()
		v.anims.Add(ring.tween)
	}
}

// OnData implements Renderer.
func (v *RingPulse) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, pulseStride, pulseWindow, pulseDecay, func(values []float64) {
		v.values = values
		reach := v.vp.MinDim() * pulseReachRatio

		for _, ring := range v.rings {
			ring.repeater.Poll()
			if !ring.tween.Started() {
				ring.circle.Visible = false
				ring.dot.Visible = false
				continue
			}

			p := ring.tween.Value()
			r := v.radius + p*reach
			fade := 1 - ring.tween.Progress()

			ring.circle.Radius = r
			ring.circle.Opacity = fade
			ring.circle.Visible = true

			ring.dot.Center = scene.Polar(v.cx, v.cy, r, ring.start+p*pulseOrbit)
			ring.dot.Opacity = fade
			ring.dot.Visible = true
		}
	})
}
