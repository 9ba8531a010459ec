package util

import "math"

// ClampFloat constrains a float64 value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Round2 rounds to two decimal places, the precision used for segment times.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Round1 rounds to one decimal place, the precision used for scores and BPM.
func Round1(value float64) float64 {
	return math.Round(value*10) / 10
}
