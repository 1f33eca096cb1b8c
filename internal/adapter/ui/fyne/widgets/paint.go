package widgets

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"  // cover art decoders
	_ "image/jpeg" // cover art decoders
	_ "image/png"  // cover art decoders
	"math"
	"slices"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/tejashwikalptaru/govis/internal/scene"
)

// painter rasterizes scene shapes onto an NRGBA image. Shape coordinates are
// in viewport units and multiplied by scale to get pixels.
type painter struct {
	img   *image.NRGBA
	scale float64
	cache *imageCache
}

func newPainter(w, h int, scale float64, cache *imageCache) *painter {
	return &painter{
		img:   image.NewNRGBA(image.Rect(0, 0, w, h)),
		scale: scale,
		cache: cache,
	}
}

// fillBackground fills the image with a solid color.
func (p *painter) fillBackground(col color.NRGBA) {
	pix := p.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = col.R, col.G, col.B, col.A
	}
}

// blend composites col over the pixel at (x, y) with the extra coverage a.
func (p *painter) blend(x, y int, col color.NRGBA, a float64) {
	if !(image.Point{X: x, Y: y}.In(p.img.Rect)) {
		return
	}
	sa := float64(col.A) / 255 * a
	if sa <= 0 {
		return
	}
	if sa > 1 {
		sa = 1
	}

	i := p.img.PixOffset(x, y)
	px := p.img.Pix[i : i+4 : i+4]
	da := float64(px[3]) / 255
	oa := sa + da*(1-sa)
	if oa == 0 {
		return
	}
	mix := func(s, d uint8) uint8 {
		return uint8((float64(s)*sa + float64(d)*da*(1-sa)) / oa)
	}
	px[0] = mix(col.R, px[0])
	px[1] = mix(col.G, px[1])
	px[2] = mix(col.B, px[2])
	px[3] = uint8(oa * 255)
}

// shape draws one shape if it is visible.
func (p *painter) shape(s scene.Shape) {
	switch v := s.(type) {
	case *scene.Circle:
		if v.Visible {
			p.circle(v)
		}
	case *scene.Line:
		if v.Visible {
			p.line(v.From, v.To, v.Width, v.EndWidth, v.Color, v.EndColor, v.Opacity)
		}
	case *scene.Path:
		if v.Visible {
			p.path(v)
		}
	case *scene.Image:
		if v.Visible {
			p.image(v)
		}
	}
}

func (p *painter) circle(c *scene.Circle) {
	cx, cy, r := c.Center.X*p.scale, c.Center.Y*p.scale, c.Radius*p.scale
	if r <= 0 || c.Opacity <= 0 {
		return
	}
	if c.Fill.A > 0 {
		p.fillCircle(cx, cy, r, c.Fill, c.Opacity)
	}
	if c.Stroke.A > 0 && c.StrokeWidth > 0 {
		p.strokeCircle(cx, cy, r, c.StrokeWidth*p.scale, c.Stroke, c.Opacity)
	}
}

// fillCircle draws a filled disc with a one pixel soft edge.
func (p *painter) fillCircle(cx, cy, r float64, col color.NRGBA, a float64) {
	x0, x1 := int(math.Floor(cx-r-1)), int(math.Ceil(cx+r+1))
	y0, y1 := int(math.Floor(cy-r-1)), int(math.Ceil(cy+r+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if cov := r + 0.5 - d; cov > 0 {
				p.blend(x, y, col, a*math.Min(cov, 1))
			}
		}
	}
}

func (p *painter) strokeCircle(cx, cy, r, width float64, col color.NRGBA, a float64) {
	half := math.Max(width/2, 0.5)
	outer := r + half
	x0, x1 := int(math.Floor(cx-outer-1)), int(math.Ceil(cx+outer+1))
	y0, y1 := int(math.Floor(cy-outer-1)), int(math.Ceil(cy+outer+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Abs(math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) - r)
			if cov := half + 0.5 - d; cov > 0 {
				p.blend(x, y, col, a*math.Min(cov, 1))
			}
		}
	}
}

// line draws a segment whose width and color interpolate from the start to
// the end point.
func (p *painter) line(from, to scene.Point, w0, w1 float64, c0, c1 color.NRGBA, a float64) {
	if a <= 0 {
		return
	}
	x0, y0 := from.X*p.scale, from.Y*p.scale
	x1, y1 := to.X*p.scale, to.Y*p.scale
	h0 := math.Max(w0*p.scale/2, 0.5)
	h1 := math.Max(w1*p.scale/2, 0.5)
	pad := math.Max(h0, h1) + 1

	minX, maxX := math.Min(x0, x1)-pad, math.Max(x0, x1)+pad
	minY, maxY := math.Min(y0, y1)-pad, math.Max(y0, y1)+pad
	dx, dy := x1-x0, y1-y0
	ll := dx*dx + dy*dy

	for y := int(minY); y <= int(maxY); y++ {
		for x := int(minX); x <= int(maxX); x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			t := 0.0
			if ll > 0 {
				t = math.Max(0, math.Min(1, ((px-x0)*dx+(py-y0)*dy)/ll))
			}
			d := math.Hypot(px-(x0+t*dx), py-(y0+t*dy))
			half := h0 + (h1-h0)*t
			if cov := half + 0.5 - d; cov > 0 {
				p.blend(x, y, lerpColor(c0, c1, t), a*math.Min(cov, 1))
			}
		}
	}
}

func (p *painter) path(path *scene.Path) {
	n := len(path.Points)
	if n < 2 || path.Opacity <= 0 {
		return
	}
	if path.Closed && path.Fill.A > 0 && n >= 3 {
		p.fillPolygon(path.Points, path.Fill, path.Opacity)
	}
	if path.Stroke.A == 0 || path.StrokeWidth <= 0 {
		return
	}
	last := n - 1
	if path.Closed {
		last = n
	}
	for i := 0; i < last; i++ {
		a, b := path.Points[i], path.Points[(i+1)%n]
		p.line(a, b, path.StrokeWidth, path.StrokeWidth, path.Stroke, path.Stroke, path.Opacity)
	}
}

// fillPolygon fills a closed polygon with the even-odd rule.
func (p *painter) fillPolygon(pts []scene.Point, col color.NRGBA, a float64) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, pt := range pts {
		minY = math.Min(minY, pt.Y*p.scale)
		maxY = math.Max(maxY, pt.Y*p.scale)
	}

	xs := make([]float64, 0, 16)
	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		sy := float64(y) + 0.5
		xs = xs[:0]
		for i := range pts {
			ax, ay := pts[i].X*p.scale, pts[i].Y*p.scale
			b := pts[(i+1)%len(pts)]
			bx, by := b.X*p.scale, b.Y*p.scale
			if (ay <= sy) == (by <= sy) {
				continue
			}
			xs = append(xs, ax+(sy-ay)/(by-ay)*(bx-ax))
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Round(xs[i])); x < int(math.Round(xs[i+1])); x++ {
				p.blend(x, y, col, a)
			}
		}
	}
}

// image draws an encoded picture clipped to a rotating disc. Pictures that
// cannot be decoded fall back to the placeholder color.
func (p *painter) image(im *scene.Image) {
	cx, cy, r := im.Center.X*p.scale, im.Center.Y*p.scale, im.Radius*p.scale
	if r <= 0 || im.Opacity <= 0 {
		return
	}

	src := p.cache.decode(im.Data)
	if src == nil {
		if im.Placeholder.A > 0 {
			p.fillCircle(cx, cy, r, im.Placeholder, im.Opacity)
		}
		return
	}

	b := src.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())
	s := 2 * r / math.Min(sw, sh)
	sin, cos := math.Sincos(im.Rotation)

	m := f64.Aff3{
		s * cos, -s * sin, 0,
		s * sin, s * cos, 0,
	}
	m[2] = cx - m[0]*(float64(b.Min.X)+sw/2) - m[1]*(float64(b.Min.Y)+sh/2)
	m[5] = cy - m[3]*(float64(b.Min.X)+sw/2) - m[4]*(float64(b.Min.Y)+sh/2)

	mask := &discMask{cx: cx, cy: cy, r: r, alpha: uint8(math.Min(im.Opacity, 1) * 255)}
	draw.BiLinear.Transform(p.img, m, src, b, draw.Over, &draw.Options{DstMask: mask})
}

// discMask is an alpha mask that is opaque inside a circle.
type discMask struct {
	cx, cy, r float64
	alpha     uint8
}

func (m *discMask) ColorModel() color.Model { return color.AlphaModel }

func (m *discMask) Bounds() image.Rectangle {
	return image.Rect(int(m.cx-m.r)-1, int(m.cy-m.r)-1, int(m.cx+m.r)+2, int(m.cy+m.r)+2)
}

func (m *discMask) At(x, y int) color.Color {
	d := math.Hypot(float64(x)+0.5-m.cx, float64(y)+0.5-m.cy)
	cov := math.Max(0, math.Min(1, m.r+0.5-d))
	return color.Alpha{A: uint8(cov * float64(m.alpha))}
}

// imageCache keeps decoded cover images. Entries are matched by backing
// array identity, so a cover is decoded once per track.
type imageCache struct {
	entries []cachedImage
}

type cachedImage struct {
	data []byte
	img  image.Image
}

const (
	maxCachedImages = 4

	// larger covers are downscaled once on decode
	maxImageSide = 512
)

func (c *imageCache) decode(data []byte) image.Image {
	if len(data) == 0 {
		return nil
	}
	for _, e := range c.entries {
		if len(e.data) == len(data) && &e.data[0] == &data[0] {
			return e.img
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	switch {
	case err != nil:
		img = nil
	case img.Bounds().Dx() > maxImageSide || img.Bounds().Dy() > maxImageSide:
		img = scaleImage(img, maxImageSide, maxImageSide)
	}
	if len(c.entries) == maxCachedImages {
		c.entries = c.entries[1:]
	}
	c.entries = append(c.entries, cachedImage{data: data, img: img})
	return img
}

// scaleImage resizes src to fit w x h, keeping its aspect ratio.
func scaleImage(src image.Image, w, h int) *image.NRGBA {
	b := src.Bounds()
	s := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	dst := image.NewNRGBA(image.Rect(0, 0, max(1, int(float64(b.Dx())*s)), max(1, int(float64(b.Dy())*s))))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	if a == b {
		return a
	}
	l := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.NRGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}
