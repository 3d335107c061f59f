package fuzzy

import (
	"errors"
	"fmt"
)

// ErrShape indicates malformed membership function breakpoints.
var ErrShape = errors.New("fuzzy: invalid membership function shape")

// Membership maps a crisp value to a degree of membership in [0, 1].
// Immutable after construction.
type Membership interface {
	Grade(x float64) float64
	// Peak is the representative crisp value of the set, used by centroid
	// defuzzification.
	Peak() float64
}

// Triangle is a triangular membership function with breakpoints a <= b <= c
// and full membership at b. Repeated endpoints (a == b or b == c) give
// half-open shoulders.
type Triangle struct {
	a, b, c float64
}

func NewTriangle(a, b, c float64) (Triangle, error) {
	if a > b || b > c || a == c {
		return Triangle{}, fmt.Errorf("%w: triangle (%g, %g, %g)", ErrShape, a, b, c)
	}
	return Triangle{a: a, b: b, c: c}, nil
}

func (t Triangle) Grade(x float64) float64 {
	switch {
	case x < t.a || x > t.c:
		return 0
	case x == t.b:
		return 1
	case x < t.b:
		return (x - t.a) / (t.b - t.a)
	default:
		return (t.c - x) / (t.c - t.b)
	}
}

func (t Triangle) Peak() float64 { return t.b }

// Trapezoid is a trapezoidal membership function with breakpoints
// a <= b <= c <= d and full membership on [b, c].
type Trapezoid struct {
	a, b, c, d float64
}

func NewTrapezoid(a, b, c, d float64) (Trapezoid, error) {
	if a > b || b > c || c > d || a == d {
		return Trapezoid{}, fmt.Errorf("%w: trapezoid (%g, %g, %g, %g)", ErrShape, a, b, c, d)
	}
	return Trapezoid{a: a, b: b, c: c, d: d}, nil
}

func (t Trapezoid) Grade(x float64) float64 {
	switch {
	case x < t.a || x > t.d:
		return 0
	case x >= t.b && x <= t.c:
		return 1
	case x < t.b:
		return (x - t.a) / (t.b - t.a)
	default:
		return (t.d - x) / (t.d - t.c)
	}
}

func (t Trapezoid) Peak() float64 { return (t.b + t.c) / 2 }
