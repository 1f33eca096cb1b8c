package visualizer

import (
	"fmt"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/smoothing"
)

const (
	radialStride     = 2
	radialWindow     = 5
	radialDecay      = 0.6
	radialPoints     = 64   // bins / stride
	radialOffset     = 8.0  // gap between disc and pattern
	radialStub       = 4.0  // minimum bar length
	radialScaleRatio = 0.22 // max extension as fraction of min(w,h)
	radialBarWidth   = 3.0

	dotRadius     = 2.5
	dotTailWidth  = 2.5
	dotTailEnd    = 0.5
	dotTailLength = 0.35 // tail length as fraction of the dot distance
)

// RadialBars draws bars radiating from the center disc. Bar length grows
// with the square of the smoothed magnitude.
type RadialBars struct {
	base
	bars []*scene.Line
}

// NewRadialBars creates a radial bar renderer.
func NewRadialBars(deps Deps) (*RadialBars, error) {
	if err := smoothing.ValidateWindow(radialWindow, radialDecay); err != nil {
		return nil, fmt.Errorf("radial bars: %w", err)
	}
	v := &RadialBars{}
	v.init(TypeRadialBars, deps)
	return v, nil
}

// Mount implements Renderer.
func (v *RadialBars) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		v.bars = make([]*scene.Line, radialPoints)
		for i := range v.bars {
			col := Rainbow(float64(i)/radialPoints, 255)
			v.bars[i] = v.arena.AddLine(scene.Line{
				Width:    radialBarWidth,
				EndWidth: radialBarWidth,
				Color:    col,
				EndColor: col,
				Opacity:  1,
				Visible:  true,
			})
		}
	})
}

// OnData implements Renderer.
func (v *RadialBars) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, radialStride, radialWindow, radialDecay, func(values []float64) {
		inner := v.radius + radialOffset
		scale := v.vp.MinDim() * radialScaleRatio
		n := min(len(values), radialPoints)

		for i, bar := range v.bars {
			if i >= n {
				bar.Visible = false
				continue
			}
			a := angleAt(i, n)
			length := radialStub + level(values[i])*scale
			bar.From = scene.Polar(v.cx, v.cy, inner, a)
			bar.To = scene.Polar(v.cx, v.cy, inner+length, a)
			bar.Visible = true
		}
	})
}

// RadialDots draws a dot per point whose distance follows the magnitude,
// trailed by a tapered gradient line.
type RadialDots struct {
	base
	dots  []*scene.Circle
	tails []*scene.Line
}

// NewRadialDots creates a radial dot renderer.
func NewRadialDots(deps Deps) (*RadialDots, error) {
	if err := smoothing.ValidateWindow(radialWindow, radialDecay); err != nil {
		return nil, fmt.Errorf("radial dots: %w", err)
	}
	v := &RadialDots{}
	v.init(TypeRadialDots, deps)
	return v, nil
}

// Mount implements Renderer.
func (v *RadialDots) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		v.dots = make([]*scene.Circle, radialPoints)
		v.tails = make([]*scene.Line, radialPoints)
		for i := range v.dots {
			col := Rainbow(float64(i)/radialPoints, 255)
			v.tails[i] = v.arena.AddLine(scene.Line{
				Width:    dotTailWidth,
				EndWidth: dotTailEnd,
				Color:    col,
				EndColor: scene.WithAlpha(col, 0),
				Opacity:  1,
				Visible:  true,
			})
			v.dots[i] = v.arena.AddCircle(scene.Circle{
				Radius:  dotRadius,
				Fill:    colorHighlight,
				Opacity: 1,
				Visible: true,
			})
		}
	})
}

// OnData implements Renderer.
func (v *RadialDots) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, radialStride, radialWindow, radialDecay, func(values []float64) {
		inner := v.radius + radialOffset
		scale := v.vp.MinDim() * radialScaleRatio
		n := min(len(values), radialPoints)

		for i, dot := range v.dots {
			tail := v.tails[i]
			if i >= n {
				dot.Visible = false
				tail.Visible = false
				continue
			}
			a := angleAt(i, n)
			dist := inner + radialStub + level(values[i])*scale
			dot.Center = scene.Polar(v.cx, v.cy, dist, a)
			dot.Visible = true

			tail.From = dot.Center
			tail.To = scene.Polar(v.cx, v.cy, dist-(dist-inner)*dotTailLength, a)
			tail.Visible = true
		}
	})
}

