// Package widgets provides custom Fyne widgets for the govis visualizer.
package widgets

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/govis/internal/scene"
)

// DefaultBackground is the color behind every layer.
var DefaultBackground = color.NRGBA{R: 8, G: 8, B: 14, A: 255}

// LayerSource returns the arenas to paint, bottom first.
type LayerSource func() []*scene.Arena

// SceneView is a widget that paints renderer arenas onto a raster.
// The arenas are read under their own read locks, so the render loop can keep
// writing while a frame is painted.
type SceneView struct {
	widget.BaseWidget

	raster     *canvas.Raster
	layers     LayerSource
	background color.NRGBA

	mu       sync.Mutex
	cache    imageCache
	onResize func(width, height float32)
	lastSize fyne.Size
}

// NewSceneView creates a view painting the arenas returned by layers.
func NewSceneView(layers LayerSource) *SceneView {
	v := &SceneView{
		layers:     layers,
		background: DefaultBackground,
	}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *SceneView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns a minimal size so the view expands to fill available space.
func (v *SceneView) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// SetOnResize registers a callback receiving the new size in fyne units.
func (v *SceneView) SetOnResize(fn func(width, height float32)) {
	v.mu.Lock()
	v.onResize = fn
	v.mu.Unlock()
}

// Resize resizes the widget and reports the new size.
func (v *SceneView) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)

	v.mu.Lock()
	fn := v.onResize
	changed := size != v.lastSize
	v.lastSize = size
	v.mu.Unlock()

	if fn != nil && changed && size.Width > 0 && size.Height > 0 {
		fn(size.Width, size.Height)
	}
}

// Invalidate requests a repaint. It may be called from any goroutine.
func (v *SceneView) Invalidate() {
	fyne.Do(v.raster.Refresh)
}

// draw is the raster generator. w and h are in pixels.
func (v *SceneView) draw(w, h int) image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.paintLocked(w, h, v.lastSize)
}

func (v *SceneView) paintLocked(w, h int, size fyne.Size) *image.NRGBA {
	scale := 1.0
	if size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}

	p := newPainter(w, h, scale, &v.cache)
	p.fillBackground(v.background)
	if w == 0 || h == 0 || v.layers == nil {
		return p.img
	}

	for _, arena := range v.layers() {
		arena.View(func(shapes []scene.Shape) {
			for _, s := range shapes {
				p.shape(s)
			}
		})
	}
	return p.img
}
