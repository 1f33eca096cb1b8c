package visualizer

import (
	"fmt"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/smoothing"
)

const (
	blobCount    = 4
	blobStride   = 2
	blobWindow   = 9
	blobDecay    = 0.8
	blobSegments = 8
	blobSpread   = 0.15 // each successive blob reaches this much farther
	blobAlpha    = 90
)

// Blobs draws four translucent filled blobs. Blob k is a closed curve
// through every fourth point starting at phase k.
type Blobs struct {
	base
	blobs []*scene.Path
	ctrl  [blobCount][]scene.Point
}

// NewBlobs creates a blob renderer.
func NewBlobs(deps Deps) (*Blobs, error) {
	if err := smoothing.ValidateWindow(blobWindow, blobDecay); err != nil {
		return nil, fmt.Errorf("blobs: %w", err)
	}
	v := &Blobs{}
	v.init(TypeBlobs, deps)
	return v, nil
}

// Mount implements Renderer.
func (v *Blobs) Mount(vp domain.Viewport) error {
	return v.mount(vp, func() {
		v.blobs = make([]*scene.Path, blobCount)
		for k := range v.blobs {
			hue := float64(k) / blobCount
			v.blobs[k] = v.arena.AddPath(scene.Path{
				Closed:      true,
				Fill:        HSL(hue, 0.85, 0.55, blobAlpha),
				Stroke:      HSL(hue, 0.85, 0.7, 160),
				StrokeWidth: 1,
				Opacity:     1,
				Visible:     true,
			})
		}
	})
}

// OnData implements Renderer.
func (v *Blobs) OnData(snapshot domain.FrequencySnapshot) {
	v.frame(snapshot, blobStride, blobWindow, blobDecay, func(values []float64) {
		inner := v.radius + radialOffset
		scale := v.vp.MinDim() * radialScaleRatio
		n := len(values)

		for k, blob := range v.blobs {
			ctrl := v.ctrl[k][:0]
			reach := scale * (1 + float64(k)*blobSpread)
			for i := k; i < n; i += blobCount {
				ctrl = append(ctrl, scene.Polar(v.cx, v.cy, inner+level(values[i])*reach, angleAt(i, n)))
			}
			v.ctrl[k] = ctrl

			if len(ctrl) < 3 {
				blob.Visible = false
				continue
			}
			blob.Points = scene.ClosedCatmullRom(ctrl, blobSegments, nil)
			blob.Visible = true
		}
	})
}
