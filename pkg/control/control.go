// Package control holds the small numeric helpers used to turn operator
// input into motor commands.
package control

// Sign is the direction of a control value.
type Sign int

const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
)

// SignOf returns the direction of v.
func SignOf(v float64) Sign {
	switch {
	case v > 0:
		return Positive
	case v < 0:
		return Negative
	default:
		return Zero
	}
}

// ClampControlRange restricts v to [-1, 1].
func ClampControlRange(v float64) float64 {
	return clamp(v, -1, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// TwoWayControl is one axis driven by two opposing inputs, such as the
// forward and back keys. Releasing the input that is not currently driving
// the axis leaves it alone.
//
// A TwoWayControl is not safe for concurrent use. Actors only touch it from
// events run by the scheduler.
type TwoWayControl struct {
	value float64
}

// Press sets the axis to v, clamped to [-1, 1].
func (c *TwoWayControl) Press(v float64) {
	c.value = ClampControlRange(v)
}

// Release zeroes the axis if direction points the same way as the held value.
func (c *TwoWayControl) Release(direction float64) {
	if SignOf(c.value) == SignOf(direction) {
		c.value = 0
	}
}

// Off zeroes the axis unconditionally.
func (c *TwoWayControl) Off() {
	c.value = 0
}

// Value returns the current axis value.
func (c *TwoWayControl) Value() float64 {
	return c.value
}
