package joysticks

// normalizeAxis rescales a raw axis value from its hardware [min,max] range
// to [-1.0, 1.0].
func normalizeAxis(value, min, max int32) float32 {

	if max == min {
		return 0
	}
	return float32(value-min)/float32(max-min)*2 - 1
}

// hatDirection collapses a signed raw hat axis value to -1, 0 or 1.
func hatDirection(value int32) int8 {
	switch {
	case value < 0:
		return -1
	case value > 0:
		return 1
	default:
		return 0
	}
}
