package widgets

import (
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

var (
	lyricTextColor        = color.NRGBA{R: 240, G: 240, B: 255, A: 255}
	lyricTranslationColor = color.NRGBA{R: 170, G: 170, B: 200, A: 255}
	lyricTrackColor       = color.NRGBA{R: 255, G: 255, B: 255, A: 40}
	lyricRevealColor      = color.NRGBA{R: 120, G: 200, B: 255, A: 230}
)

// revealStep is the smallest reveal change worth a repaint (percent).
const revealStep = 0.25

// LyricLine shows the active lyric line, its translation and a reveal bar
// that sweeps under the text.
//
// It implements ports.LyricView and may be driven from any goroutine.
type LyricLine struct {
	widget.BaseWidget

	mu          sync.Mutex
	text        string
	translation string
	reveal      float64
}

// NewLyricLine creates an empty lyric line.
func NewLyricLine() *LyricLine {
	l := &LyricLine{}
	l.ExtendBaseWidget(l)
	return l
}

// ShowLine implements ports.LyricView.
func (l *LyricLine) ShowLine(line domain.TimedLine) {
	l.mu.Lock()
	l.text = line.Text
	l.translation = line.Translation
	l.mu.Unlock()
	fyne.Do(l.Refresh)
}

// SetReveal implements ports.LyricView.
func (l *LyricLine) SetReveal(percent float64) {
	percent = math.Max(0, math.Min(100, percent))

	l.mu.Lock()
	if percent == l.reveal || (math.Abs(percent-l.reveal) < revealStep && percent != 100) {
		l.mu.Unlock()
		return
	}
	l.reveal = percent
	l.mu.Unlock()
	fyne.Do(l.Refresh)
}

// ClearLine implements ports.LyricView.
func (l *LyricLine) ClearLine() {
	l.mu.Lock()
	l.text = ""
	l.translation = ""
	l.reveal = 0
	l.mu.Unlock()
	fyne.Do(l.Refresh)
}

// State returns the displayed text, translation and reveal percent.
func (l *LyricLine) State() (text, translation string, reveal float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text, l.translation, l.reveal
}

// CreateRenderer implements fyne.Widget.
func (l *LyricLine) CreateRenderer() fyne.WidgetRenderer {
	text := canvas.NewText("", lyricTextColor)
	text.Alignment = fyne.TextAlignCenter
	text.TextStyle = fyne.TextStyle{Bold: true}
	text.TextSize = theme.TextSize() * 1.4

	translation := canvas.NewText("", lyricTranslationColor)
	translation.Alignment = fyne.TextAlignCenter
	translation.TextStyle = fyne.TextStyle{Italic: true}

	r := &lyricLineRenderer{
		line:        l,
		text:        text,
		translation: translation,
		track:       canvas.NewRectangle(lyricTrackColor),
		bar:         canvas.NewRectangle(lyricRevealColor),
	}
	r.Refresh()
	return r
}

type lyricLineRenderer struct {
	line        *LyricLine
	text        *canvas.Text
	translation *canvas.Text
	track       *canvas.Rectangle
	bar         *canvas.Rectangle
	reveal      float64
}

const lyricBarHeight = 3

func (r *lyricLineRenderer) Layout(size fyne.Size) {
	textH := r.text.MinSize().Height
	r.text.Resize(fyne.NewSize(size.Width, textH))
	r.text.Move(fyne.NewPos(0, 0))

	transH := r.translation.MinSize().Height
	r.translation.Resize(fyne.NewSize(size.Width, transH))
	r.translation.Move(fyne.NewPos(0, textH))

	// the bar spans the text width, centered
	barW := fyne.Min(r.text.MinSize().Width, size.Width)
	barX := (size.Width - barW) / 2
	barY := textH + transH + theme.Padding()/2
	r.track.Resize(fyne.NewSize(barW, lyricBarHeight))
	r.track.Move(fyne.NewPos(barX, barY))
	r.bar.Resize(fyne.NewSize(barW*float32(r.reveal/100), lyricBarHeight))
	r.bar.Move(fyne.NewPos(barX, barY))
}

func (r *lyricLineRenderer) MinSize() fyne.Size {
	h := r.text.MinSize().Height + r.translation.MinSize().Height + theme.Padding()/2 + lyricBarHeight
	return fyne.NewSize(r.text.MinSize().Width, h)
}

func (r *lyricLineRenderer) Refresh() {
	text, translation, reveal := r.line.State()
	r.text.Text = text
	r.translation.Text = translation
	r.reveal = reveal

	visible := text != ""
	r.track.Hidden = !visible
	r.bar.Hidden = !visible

	r.Layout(r.line.Size())
	for _, o := range r.Objects() {
		canvas.Refresh(o)
	}
}

func (r *lyricLineRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.text, r.translation, r.track, r.bar}
}

func (r *lyricLineRenderer) Destroy() {}

var _ ports.LyricView = (*LyricLine)(nil)
