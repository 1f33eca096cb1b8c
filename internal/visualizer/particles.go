package visualizer

import (
	"fmt"
	"time"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/smoothing"
)

const (
	particleAnchors     = 32
	particlesPerAnchor  = 12
	particleStride      = 4
	particleWindow      = 3
	particleDecay       = 0.5
	particleCycle       = 4 * time.Second
	particleSalientHold = 300 * time.Millisecond
	particleTravelRatio = 0.25 // drift distance as fraction of min(w,h)
	particleSalientGain = 1.8  // travel multiplier at the salient anchor
	particleJitter      = 0.12 // max angular jitter in radians
	particleRadius      = 1.5
)

type particle struct {
	shape *scene.Circle
	angle float64 // jitter around the anchor angle
	speed float64 // travel multiplier
}

// Particles emits particles from anchor points around the disc. They drift
// outward and fade on a repeating cycle; the ones at the salient anchor
// travel farther.
type Particles struct {
	base

	// particles[slot][anchor]; every slot has its own phase-shifted loop
	particles [particlesPerAnchor][]particle
	slots     [particlesPerAnchor]*animation.Tween
	repeaters [particlesPerAnchor]*animation.Repeater

	salient   int
	pickedAt  time.Time
	hasPicked bool
}

// NewParticles creates a particle renderer.
func NewParticles(deps Deps) (*Particles, error) {
	if err := smoothing.ValidateWindow(particleWindow, particleDecay); err != nil {
		return nil, fmt.Errorf("particles: %w", err)
	}
	v := &Particles{}
	v.init(TypeParticles, deps)
	v.decorate = v.startSlots
	return v, nil
}

// Mount implements Renderer.
func (v *Particles) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		v.hasPicked = false
		center := scene.Point{X: v.cx, Y: v.cy}

		for s := range v.particles {
			v.particles[s] = make([]particle, particleAnchors)
			for a := range v.particles[s] {
				v.particles[s][a].shape = v.arena.AddCircle(scene.Circle{
					Center: center,
					Radius: particleRadius,
					Fill:   Rainbow(float64(a)/particleAnchors, 255),
				})
			}

			v.slots[s] = animation.NewTween(v.clock, particleCycle,
				animation.WithDelay(time.Duration(s)*particleCycle/particlesPerAnchor),
				animation.WithRepeat(),
			)
			slot := s
			v.repeaters[s] = v.repeat(v.slots[s], func(int) { v.reroll(slot) })
		}
	})
}

// startSlots starts every slot loop, each delayed by its phase.
func (v *Particles) startSlots() {
	for s, tw := range v.slots {
		v.repeaters[s].Reset()
		tw.Start()
		v.anims.Add(tw)
	}
}

// reroll draws fresh jitter for every particle of a slot.
func (v *Particles) reroll(slot int) {
	for a := range v.particles[slot] {
		p := &v.particles[slot][a]
		p.angle = (v.rng.Float64()*2 - 1) * particleJitter
		p.speed = 0.7 + v.rng.Float64()*0.6
	}
}

// OnData implements Renderer.
func (v *Particles) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, particleStride, particleWindow, particleDecay, func(values []float64) {
		now := v.clock.Now()
		if !v.hasPicked || now.Sub(v.pickedAt) >= particleSalientHold {
			v.salient = smoothing.PickSalientIndex(values, v.rng)
			v.pickedAt = now
			v.hasPicked = true
		}

		inner := v.radius + radialOffset
		scale := v.vp.MinDim() * radialScaleRatio
		travel := v.vp.MinDim() * particleTravelRatio
		n := min(len(values), particleAnchors)

		for s := range v.particles {
			v.repeaters[s].Poll()
			tw := v.slots[s]
			started := tw.Started()
			progress := tw.Progress()

			for a := range v.particles[s] {
				p := &v.particles[s][a]
				if !started || a >= n {
					p.shape.Visible = false
					continue
				}

				lvl := level(values[a])
				dist := travel * progress * p.speed
				if a == v.salient {
					dist *= particleSalientGain
				}

				p.shape.Center = scene.Polar(v.cx, v.cy, inner+lvl*scale*0.5+dist, angleAt(a, n)+p.angle)
				p.shape.Opacity = (1 - progress) * (0.35 + 0.65*lvl)
				p.shape.Visible = true
			}
		}
	})
}
