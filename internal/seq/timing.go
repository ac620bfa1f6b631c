package seq

// StepDelta converts tempo to the step interval in milliseconds.
// subdivision is steps per beat: 1 = quarter notes, 2 = eighths, 4 =
// sixteenths. Non-positive inputs are clamped rather than rejected.
func StepDelta(bpm float64, subdivision int) float64 {
	if bpm <= 0 {
		bpm = 120
	}
	if subdivision < 1 {
		subdivision = 1
	}
	return 60000.0 / bpm / float64(subdivision)
}

// SwingDelta lengthens even steps and shortens odd steps by the swing
// ratio, keeping each even/odd pair summing to twice the base interval.
// swing is 0..1 where 0 is straight time and 1 doubles the even step.
func SwingDelta(base float64, stepIndex int, swing float64) float64 {
	if swing < 0 {
		swing = 0
	} else if swing > 1 {
		swing = 1
	}
	if stepIndex%2 == 0 {
		return base * (1 + swing)
	}
	return base * (1 - swing)
}
