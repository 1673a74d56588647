package replay

import "math"

// antiStallThreshold is the remainder magnitude at which a truncated-to-zero
// axis still injects one unit, so low sensitivities cannot lose all motion
// to repeated truncation.
const antiStallThreshold = 0.8

// carry holds the fractional motion remainder for one axis across replay
// ticks.
type carry struct {
	rem float64
}

// step adds scaled motion to the remainder and returns the integer units to
// inject now. Truncation is toward zero; only the fractional part carries
// forward. If truncation yields zero but the remainder has reached the
// anti-stall threshold, one unit is forced and discharged.
func (c *carry) step(scaled float64) int {
	c.rem += scaled
	n := math.Trunc(c.rem)
	c.rem -= n
	if n == 0 && math.Abs(c.rem) >= antiStallThreshold {
		if c.rem > 0 {
			n = 1
		} else {
			n = -1
		}
		c.rem -= n
	}
	return int(n)
}
