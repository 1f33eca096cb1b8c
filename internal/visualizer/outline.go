package visualizer

import (
	"fmt"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/smoothing"
)

const (
	outlineStride   = 2
	outlineWindow   = 7
	outlineDecay    = 0.7
	outlineSegments = 6 // spline samples per control point
	outlineWidth    = 2.5

	doubleGap      = 24.0 // distance between the rest positions of the two rings
	doubleDentRate = 0.5  // inner dent depth relative to the outer bump
	doubleTieEvery = 2    // one tie per this many control points
)

// Outline draws a closed smooth curve through the decimated, smoothed points.
type Outline struct {
	base
	path *scene.Path
	ctrl []scene.Point
}

// NewOutline creates an outline renderer.
func NewOutline(deps Deps) (*Outline, error) {
	if err := smoothing.ValidateWindow(outlineWindow, outlineDecay); err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	v := &Outline{}
	v.init(TypeOutline, deps)
	return v, nil
}

// Mount implements Renderer.
func (v *Outline) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		v.path = v.arena.AddPath(scene.Path{
			Closed:      true,
			Stroke:      HSL(0.55, 0.9, 0.6, 255),
			Fill:        HSL(0.55, 0.9, 0.6, 40),
			StrokeWidth: outlineWidth,
			Opacity:     1,
			Visible:     true,
		})
	})
}

// OnData implements Renderer.
func (v *Outline) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, outlineStride, outlineWindow, outlineDecay, func(values []float64) {
		scale := v.vp.MinDim() * radialScaleRatio
		v.ctrl = v.ringPoints(values, v.radius+radialOffset, scale, v.ctrl)
		v.path.Points = scene.ClosedCatmullRom(v.ctrl, outlineSegments, nil)
	})
}

// OutlineDouble draws an outer ring that bumps outward and an inner ring
// that dents inward, joined by straight radial ties.
type OutlineDouble struct {
	base
	outer *scene.Path
	inner *scene.Path
	ties  []*scene.Line

	outerCtrl []scene.Point
	innerCtrl []scene.Point
}

// NewOutlineDouble creates a double outline renderer.
func NewOutlineDouble(deps Deps) (*OutlineDouble, error) {
	if err := smoothing.ValidateWindow(outlineWindow, outlineDecay); err != nil {
		return nil, fmt.Errorf("outline double: %w", err)
	}
	v := &OutlineDouble{}
	v.init(TypeOutlineDouble, deps)
	return v, nil
}

// Mount implements Renderer.
func (v *OutlineDouble) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		v.outer = v.arena.AddPath(scene.Path{
			Closed:      true,
			Stroke:      HSL(0.85, 0.8, 0.6, 255),
			StrokeWidth: outlineWidth,
			Opacity:     1,
			Visible:     true,
		})
		v.inner = v.arena.AddPath(scene.Path{
			Closed:      true,
			Stroke:      HSL(0.5, 0.8, 0.6, 255),
			StrokeWidth: outlineWidth,
			Opacity:     1,
			Visible:     true,
		})

		v.ties = make([]*scene.Line, radialPoints/doubleTieEvery)
		for i := range v.ties {
			col := HSL(0.7, 0.6, 0.7, 160)
			v.ties[i] = v.arena.AddLine(scene.Line{
				Width:    1,
				EndWidth: 1,
				Color:    col,
				EndColor: col,
				Opacity:  1,
				Visible:  true,
			})
		}
	})
}

// OnData implements Renderer.
func (v *OutlineDouble) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, outlineStride, outlineWindow, outlineDecay, func(values []float64) {
		scale := v.vp.MinDim() * radialScaleRatio
		rest := v.radius + radialOffset + doubleGap

		v.outerCtrl = v.ringPoints(values, rest, scale, v.outerCtrl)
		v.innerCtrl = v.ringPoints(values, rest-doubleGap/2, -scale*doubleDentRate, v.innerCtrl)

		v.outer.Points = scene.ClosedCatmullRom(v.outerCtrl, outlineSegments, nil)
		v.inner.Points = scene.ClosedCatmullRom(v.innerCtrl, outlineSegments, nil)

		for i, tie := range v.ties {
			k := i * doubleTieEvery
			if k >= len(values) {
				tie.Visible = false
				continue
			}
			tie.From = v.innerCtrl[k]
			tie.To = v.outerCtrl[k]
			tie.Visible = true
		}
	})
}
