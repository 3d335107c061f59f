package fuzzy

import (
	"errors"
	"math"
	"testing"
)

func TestTriangleGrades(t *testing.T) {
	tri, err := NewTriangle(-1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		x, want float64
	}{
		{-2, 0}, {-1, 0}, {-0.5, 0.5}, {0, 1}, {0.5, 0.5}, {1, 0}, {2, 0},
	}
	for _, c := range cases {
		if got := tri.Grade(c.x); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("grade(%g): got %f, want %f", c.x, got, c.want)
		}
	}

	if tri.Peak() != 0 {
		t.Errorf("peak: got %f, want 0", tri.Peak())
	}
}

func TestTriangleShoulders(t *testing.T) {
	left, err := NewTriangle(0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := left.Grade(0); got != 1 {
		t.Errorf("left shoulder at peak: got %f", got)
	}
	if got := left.Grade(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("left shoulder at 0.5: got %f", got)
	}

	right, err := NewTriangle(0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := right.Grade(1); got != 1 {
		t.Errorf("right shoulder at peak: got %f", got)
	}
}

func TestTriangleInvalid(t *testing.T) {
	if _, err := NewTriangle(1, 0, 2); !errors.Is(err, ErrShape) {
		t.Errorf("unordered breakpoints: got %v", err)
	}
	if _, err := NewTriangle(0, 0, 0); !errors.Is(err, ErrShape) {
		t.Errorf("degenerate triangle: got %v", err)
	}
}

func TestTrapezoidGrades(t *testing.T) {
	tz, err := NewTrapezoid(0, 1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		x, want float64
	}{
		{-1, 0}, {0.5, 0.5}, {1, 1}, {1.5, 1}, {2, 1}, {2.5, 0.5}, {4, 0},
	}
	for _, c := range cases {
		if got := tz.Grade(c.x); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("grade(%g): got %f, want %f", c.x, got, c.want)
		}
	}

	if got := tz.Peak(); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("peak: got %f, want 1.5", got)
	}

	if _, err := NewTrapezoid(0, 2, 1, 3); !errors.Is(err, ErrShape) {
		t.Errorf("unordered trapezoid: got %v", err)
	}
}
