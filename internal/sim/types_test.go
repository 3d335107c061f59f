package sim

import (
	"math"
	"testing"
)

func TestStateNorm(t *testing.T) {
	if got := (State{3, 4}).Norm(); got != 5 {
		t.Errorf("norm of {3,4}: got %f, want 5", got)
	}
	if got := (State{}).Norm(); got != 0 {
		t.Errorf("norm of empty state: got %f, want 0", got)
	}
}

func TestStateIsValid(t *testing.T) {
	if !(State{0, 1}).IsValid() {
		t.Error("finite state must be valid")
	}
	if (State{math.NaN(), 0}).IsValid() {
		t.Error("NaN state must be invalid")
	}
	if (State{0, math.Inf(1)}).IsValid() {
		t.Error("infinite state must be invalid")
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	a := State{1, 2}
	b := a.Clone()
	b[0] = 9
	if a[0] != 1 {
		t.Error("mutating a clone must not touch the original")
	}
}
