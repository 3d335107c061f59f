package fuzzy

import (
	"errors"
	"fmt"
)

// Label indexes the linguistic terms of a 5-label variable, ordered from
// negative-big to positive-big.
type Label int

const (
	NB Label = iota
	NS
	ZO
	PS
	PB

	numLabels = int(PB) + 1
)

var labelNames = [numLabels]string{"NB", "NS", "ZO", "PS", "PB"}

func (l Label) String() string {
	if l < 0 || int(l) >= numLabels {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

func (l Label) valid() bool { return l >= 0 && int(l) < numLabels }

// ErrVariable indicates a malformed linguistic variable.
var ErrVariable = errors.New("fuzzy: invalid linguistic variable")

// Grades holds one degree of membership per label.
type Grades [numLabels]float64

// Variable is a named input or output with a bounded domain and one
// membership function per label. Immutable after construction.
type Variable struct {
	Name     string
	Min, Max float64
	Terms    [numLabels]Membership
}

func NewVariable(name string, min, max float64, terms [numLabels]Membership) (Variable, error) {
	if min >= max {
		return Variable{}, fmt.Errorf("%w: %s domain [%g, %g]", ErrVariable, name, min, max)
	}
	for i, term := range terms {
		if term == nil {
			return Variable{}, fmt.Errorf("%w: %s has no %s term", ErrVariable, name, Label(i))
		}
	}
	return Variable{Name: name, Min: min, Max: max, Terms: terms}, nil
}

// StandardVariable builds the symmetric 5-label partition over [-span, span]:
// trapezoidal shoulders for NB/PB, triangles peaking at -span/2, 0, span/2
// for the interior terms. Zero input grades ZO at 1 and all others at 0.
func StandardVariable(name string, span float64) (Variable, error) {
	if span <= 0 {
		return Variable{}, fmt.Errorf("%w: %s span %g", ErrVariable, name, span)
	}
	half := span / 2

	nb, err := NewTrapezoid(-span, -span, -3*half/2, -half)
	if err != nil {
		return Variable{}, err
	}
	ns, err := NewTriangle(-span, -half, 0)
	if err != nil {
		return Variable{}, err
	}
	zo, err := NewTriangle(-half, 0, half)
	if err != nil {
		return Variable{}, err
	}
	ps, err := NewTriangle(0, half, span)
	if err != nil {
		return Variable{}, err
	}
	pb, err := NewTrapezoid(half, 3*half/2, span, span)
	if err != nil {
		return Variable{}, err
	}

	return NewVariable(name, -span, span, [numLabels]Membership{nb, ns, zo, ps, pb})
}

// Clamp restricts x to the declared domain; fuzzification never extrapolates
// beyond the outermost membership supports.
func (v Variable) Clamp(x float64) float64 {
	if x < v.Min {
		return v.Min
	}
	if x > v.Max {
		return v.Max
	}
	return x
}

// Fuzzify evaluates every term at the (clamped) crisp input.
func (v Variable) Fuzzify(x float64) Grades {
	x = v.Clamp(x)
	var g Grades
	for i, term := range v.Terms {
		g[i] = term.Grade(x)
	}
	return g
}

// Midpoint is the defuzzification fallback when no rule covers the input.
func (v Variable) Midpoint() float64 { return (v.Min + v.Max) / 2 }
