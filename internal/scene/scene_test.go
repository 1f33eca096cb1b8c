package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_AddAndView(t *testing.T) {
	a := NewArena()
	c := a.AddCircle(Circle{Radius: 3})
	l := a.AddLine(Line{Width: 1})
	a.AddPath(Path{Closed: true})
	a.AddImage(Image{Radius: 10})

	require.Equal(t, 4, a.Len())

	a.Update(func() {
		c.Radius = 7
		l.Width = 2
	})

	a.View(func(shapes []Shape) {
		assert.Equal(t, KindCircle, shapes[0].Kind())
		assert.Equal(t, KindLine, shapes[1].Kind())
		assert.Equal(t, KindPath, shapes[2].Kind())
		assert.Equal(t, KindImage, shapes[3].Kind())
		assert.InDelta(t, 7.0, shapes[0].(*Circle).Radius, 1e-9)
	})
}

func TestArena_SnapshotIsDeep(t *testing.T) {
	a := NewArena()
	p := a.AddPath(Path{Points: []Point{{1, 1}, {2, 2}}})

	snap := a.Snapshot()
	a.Update(func() { p.Points[0].X = 99 })

	assert.InDelta(t, 1.0, snap[0].(*Path).Points[0].X, 1e-9)
}

func TestArena_Clear(t *testing.T) {
	a := NewArena()
	a.AddCircle(Circle{})
	a.Clear()
	assert.Equal(t, 0, a.Len())
}

func TestClosedCatmullRom_PassesThroughPoints(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	out := ClosedCatmullRom(pts, 8, nil)
	require.Len(t, out, len(pts)*8)

	for k, p := range pts {
		assert.InDelta(t, p.X, out[k*8].X, 1e-9)
		assert.InDelta(t, p.Y, out[k*8].Y, 1e-9)
	}
}

func TestClosedCatmullRom_ReusesBuffer(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0}, {1, 1}}
	buf := make([]Point, 0, 64)

	out := ClosedCatmullRom(pts, 4, buf)
	assert.Len(t, out, 12)
	assert.Equal(t, &buf[:1][0], &out[:1][0])
}

func TestClosedCatmullRom_Degenerate(t *testing.T) {
	pts := []Point{{1, 2}, {3, 4}}
	out := ClosedCatmullRom(pts, 4, nil)
	assert.Equal(t, pts, out)
}

func TestPolar(t *testing.T) {
	p := Polar(5, 5, 2, math.Pi/2)
	assert.InDelta(t, 5.0, p.X, 1e-9)
	assert.InDelta(t, 7.0, p.Y, 1e-9)
}
