package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// TappableStack layers its objects on top of each other and reports taps on
// the whole area. It wraps the visualizer and lyric overlay: a primary tap
// toggles playback and a secondary tap opens the visualizer menu.
type TappableStack struct {
	widget.BaseWidget

	content        *fyne.Container
	onTap          func()
	onSecondaryTap func(*fyne.PointEvent)
}

// NewTappableStack creates a stack of objects, the first at the bottom.
func NewTappableStack(objects ...fyne.CanvasObject) *TappableStack {
	t := &TappableStack{
		content: container.NewStack(objects...),
	}
	t.ExtendBaseWidget(t)
	return t
}

// SetOnTapped sets the primary tap handler.
func (t *TappableStack) SetOnTapped(fn func()) {
	t.onTap = fn
}

// SetOnTappedSecondary sets the secondary tap (right-click) handler.
func (t *TappableStack) SetOnTappedSecondary(fn func(*fyne.PointEvent)) {
	t.onSecondaryTap = fn
}

// CreateRenderer implements fyne.Widget.
func (t *TappableStack) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

// Tapped implements fyne.Tappable.
func (t *TappableStack) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap()
	}
}

// TappedSecondary implements fyne.SecondaryTappable.
func (t *TappableStack) TappedSecondary(pe *fyne.PointEvent) {
	if t.onSecondaryTap != nil {
		t.onSecondaryTap(pe)
	}
}

var _ fyne.Tappable = (*TappableStack)(nil)
var _ fyne.SecondaryTappable = (*TappableStack)(nil)
