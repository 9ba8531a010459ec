package analysis

// TargetDuration maps a track's overall energy (0-100) to a preferred segment
// length: punchy tracks stay short, mellow tracks get room to breathe. The
// result is clamped so it never exceeds the track itself.
func TargetDuration(energy, trackDuration float64) float64 {
	var target float64
	switch {
	case energy >= 70:
		target = 45 + (100-energy)/100*10 // 45-48s
	case energy >= 40:
		target = 55 + (70-energy)/30*15 // 55-70s
	default:
		target = 70 + (40-energy)/40*20 // 70-90s
	}

	if trackDuration > 0 && target > trackDuration {
		target = trackDuration
	}
	return target
}

// FallbackWindow guesses a segment when no decoded signal is available,
// placing the start where a chorus typically lands for a track of this
// length.
func FallbackWindow(trackDuration, targetLen float64) (start, end float64) {
	switch {
	case trackDuration > 240:
		start = trackDuration * 0.32
	case trackDuration > 180:
		start = trackDuration * 0.28
	case trackDuration > 120:
		start = trackDuration * 0.22
	default:
		start = 0
	}

	end = start + targetLen
	if end > trackDuration {
		end = trackDuration
	}
	return start, end
}
