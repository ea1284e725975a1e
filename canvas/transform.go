package canvas

import "math"

// Transform is a 2D affine matrix using the same field names as a browser
// DOMMatrix:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
//
// E and F are the translation components.
type Transform struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

// TranslateBy returns a pure translation.
func TranslateBy(dx, dy float64) Transform {
	return Transform{A: 1, D: 1, E: dx, F: dy}
}

// ScaleBy returns a pure scale.
func ScaleBy(sx, sy float64) Transform {
	return Transform{A: sx, D: sy}
}

// Multiply returns t * o. Applied to a point, o acts first.
func (t Transform) Multiply(o Transform) Transform {
	return Transform{
		A: t.A*o.A + t.C*o.B,
		B: t.B*o.A + t.D*o.B,
		C: t.A*o.C + t.C*o.D,
		D: t.B*o.C + t.D*o.D,
		E: t.A*o.E + t.C*o.F + t.E,
		F: t.B*o.E + t.D*o.F + t.F,
	}
}

// Apply maps p through the transform.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.C*p.Y + t.E,
		Y: t.B*p.X + t.D*p.Y + t.F,
	}
}

// Invert returns the inverse transform and false if t is singular.
func (t Transform) Invert() (Transform, bool) {
	det := t.A*t.D - t.B*t.C
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Identity(), false
	}
	inv := 1 / det
	return Transform{
		A: t.D * inv,
		B: -t.B * inv,
		C: -t.C * inv,
		D: t.A * inv,
		E: (t.C*t.F - t.D*t.E) * inv,
		F: (t.B*t.E - t.A*t.F) * inv,
	}, true
}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}
