package canvas

// Point is a 2D coordinate. Whether it is in screen or world space depends on
// where it came from.
type Point struct {
	X, Y float64
}

// Origin is the zero point.
var Origin = Point{}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Diff returns a - b.
func Diff(a, b Point) Point {
	return Point{X: a.X - b.X, Y: a.Y - b.Y}
}

// Add returns a + b.
func Add(a, b Point) Point {
	return Point{X: a.X + b.X, Y: a.Y + b.Y}
}

// ScaleDown divides both components by s. s must be nonzero.
func ScaleDown(p Point, s float64) Point {
	return Point{X: p.X / s, Y: p.Y / s}
}
