package scene

// ClosedCatmullRom samples a closed uniform Catmull-Rom spline through pts,
// emitting segments points per span. The curve passes through every input
// point; point k of the input lands at index k*segments of the result.
// dst is reused when it has enough capacity.
func ClosedCatmullRom(pts []Point, segments int, dst []Point) []Point {
	n := len(pts)
	if segments < 1 {
		segments = 1
	}
	dst = dst[:0]
	if n < 3 {
		return append(dst, pts...)
	}

	for i := 0; i < n; i++ {
		p0 := pts[(i-1+n)%n]
		p1 := pts[i]
		p2 := pts[(i+1)%n]
		p3 := pts[(i+2)%n]

		for s := 0; s < segments; s++ {
			t := float64(s) / float64(segments)
			dst = append(dst, catmullRom(p0, p1, p2, p3, t))
		}
	}
	return dst
}

func catmullRom(p0, p1, p2, p3 Point, t float64) Point {
	t2 := t * t
	t3 := t2 * t
	return Point{
		X: 0.5 * (2*p1.X + (-p0.X+p2.X)*t + (2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 + (-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * (2*p1.Y + (-p0.Y+p2.Y)*t + (2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 + (-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}
