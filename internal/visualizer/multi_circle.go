package visualizer

import (
	"fmt"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/smoothing"
)

const (
	multiRings     = 8
	multiStride    = 2
	multiWindow    = 3
	multiDecay     = 0.5
	multiSpacing   = 0.035 // ring spacing as fraction of min(w,h)
	multiBobRatio  = 0.06  // max outward bob as fraction of min(w,h)
	multiRingWidth = 2.0
)

// MultiCircle draws concentric rings. Each ring is assigned one decimated
// sample and bobs outward in proportion to it.
type MultiCircle struct {
	base
	rings []*scene.Circle
}

// NewMultiCircle creates a multi circle renderer.
func NewMultiCircle(deps Deps) (*MultiCircle, error) {
	if err := smoothing.ValidateWindow(multiWindow, multiDecay); err != nil {
		return nil, fmt.Errorf("multi circle: %w", err)
	}
	v := &MultiCircle{}
	v.init(TypeMultiCircle, deps)
	return v, nil
}

// Mount implements Renderer.
func (v *MultiCircle) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		v.rings = make([]*scene.Circle, multiRings)
		for j := range v.rings {
			v.rings[j] = v.arena.AddCircle(scene.Circle{
				Center:      scene.Point{X: v.cx, Y: v.cy},
				Radius:      v.restRadius(j),
				Stroke:      HSL(float64(j)/multiRings, 0.8, 0.6, 255),
				StrokeWidth: multiRingWidth,
				Opacity:     1 - float64(j)/(multiRings*1.5),
				Visible:     true,
			})
		}
	})
}

func (v *MultiCircle) restRadius(j int) float64 {
	return v.radius + radialOffset + float64(j)*v.vp.MinDim()*multiSpacing
}

// OnData implements Renderer.
func (v *MultiCircle) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, multiStride, multiWindow, multiDecay, func(values []float64) {
		bob := v.vp.MinDim() * multiBobRatio
		n := len(values)

		for j, ring := range v.rings {
			sample := values[j*n/multiRings]
			ring.Radius = v.restRadius(j) + level(sample)*bob
		}
	})
}
