// Package scene holds the drawable shapes a renderer mutates every frame.
//
// Shapes are plain structs owned by an Arena. A renderer creates them once at
// mount time, keeps the returned pointers, and updates their fields under the
// arena's write lock; a painter reads them under the read lock.
package scene

import (
	"image/color"
	"math"
)

// Kind identifies the concrete type of a Shape.
type Kind int

// Shape kinds.
const (
	KindCircle Kind = iota
	KindLine
	KindPath
	KindImage
)

// Shape is any drawable element stored in an Arena.
type Shape interface {
	Kind() Kind
	clone() Shape
}

// Point is a 2D position in viewport coordinates.
type Point struct {
	X, Y float64
}

// Polar returns the point at distance r and angle a (radians) from the center.
func Polar(cx, cy, r, a float64) Point {
	return Point{X: cx + math.Cos(a)*r, Y: cy + math.Sin(a)*r}
}

// Circle is a filled and/or stroked circle.
type Circle struct {
	Center      Point
	Radius      float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Opacity     float64
	Visible     bool
}

// Kind implements Shape.
func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) clone() Shape {
	cp := *c
	return &cp
}

// Line is a straight segment whose width and color may taper from From to To.
type Line struct {
	From, To Point
	Width    float64
	EndWidth float64 // equal to Width for untapered lines
	Color    color.NRGBA
	EndColor color.NRGBA // gradient end; equal to Color for flat lines
	Opacity  float64
	Visible  bool
}

// Kind implements Shape.
func (l *Line) Kind() Kind { return KindLine }

func (l *Line) clone() Shape {
	cp := *l
	return &cp
}

// Path is a polyline or polygon. Its points are replaced wholesale when the
// geometry changes; the Path itself stays the same shape.
type Path struct {
	Points      []Point
	Closed      bool
	Fill        color.NRGBA // zero alpha means no fill
	Stroke      color.NRGBA // zero alpha means no stroke
	StrokeWidth float64
	Opacity     float64
	Visible     bool
}

// Kind implements Shape.
func (p *Path) Kind() Kind { return KindPath }

func (p *Path) clone() Shape {
	cp := *p
	cp.Points = append([]Point(nil), p.Points...)
	return &cp
}

// Image is an encoded picture drawn as a rotating disc.
type Image struct {
	Center      Point
	Radius      float64
	Rotation    float64 // radians
	Data        []byte  // encoded image (PNG, JPEG, ...); nil draws Placeholder
	Placeholder color.NRGBA
	Opacity     float64
	Visible     bool
}

// Kind implements Shape.
func (i *Image) Kind() Kind { return KindImage }

func (i *Image) clone() Shape {
	cp := *i
	return &cp
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
