package metrics

import "math"

// ControlEffort accumulates the mean absolute control signal over a run.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(reference, output, control, t float64) {
	c.sum += math.Abs(control)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// ITAE accumulates the integral of time-weighted absolute error, a single
// figure that penalizes both slow approach and lingering oscillation.
type ITAE struct {
	sum     float64
	prevT   float64
	samples int
}

func NewITAE() *ITAE {
	return &ITAE{}
}

func (m *ITAE) Name() string { return "itae" }

func (m *ITAE) Observe(reference, output, control, t float64) {
	if m.samples > 0 {
		dt := t - m.prevT
		m.sum += t * math.Abs(reference-output) * dt
	}
	m.prevT = t
	m.samples++
}

func (m *ITAE) Value() float64 { return m.sum }

func (m *ITAE) Reset() {
	m.sum = 0
	m.prevT = 0
	m.samples = 0
}
