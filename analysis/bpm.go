package analysis

import "math"

// DefaultBPM stands in when tempo estimation cannot find a stable pulse.
const DefaultBPM = 120.0

// EstimateBPM reads tempo off the onset envelope by autocorrelation over the
// 60-200 BPM lag range. Tracks too short or too flat for a reliable estimate
// get DefaultBPM.
func EstimateBPM(onset []float64, o Options) float64 {
	fps := o.framesPerSecond()

	minLag := int(fps * 60 / 200) // 200 BPM
	maxLag := int(fps * 60 / 60)  // 60 BPM
	if minLag < 1 || len(onset) < maxLag*2 {
		return DefaultBPM
	}

	var sum float64
	for _, v := range onset {
		sum += v
	}
	avg := sum / float64(len(onset))

	centered := make([]float64, len(onset))
	variance := 0.0
	for i, v := range onset {
		centered[i] = v - avg
		variance += centered[i] * centered[i]
	}
	if variance == 0 {
		return DefaultBPM
	}

	bestLag, bestScore := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var score float64
		for i := lag; i < len(centered); i++ {
			score += centered[i] * centered[i-lag]
		}
		if score > bestScore {
			bestLag, bestScore = lag, score
		}
	}
	if bestLag == 0 || bestScore <= 0 {
		return DefaultBPM
	}

	return 60 * fps / float64(bestLag)
}

// BeatPhase finds the offset of the first beat by testing which alignment of
// a bpm-spaced grid catches the most onset energy.
func BeatPhase(onset []float64, o Options, bpm float64) float64 {
	fps := o.framesPerSecond()
	interval := 60 / bpm * fps // frames per beat
	if interval < 1 || len(onset) == 0 {
		return 0
	}

	bestPhase, bestScore := 0.0, -1.0
	steps := int(interval)
	for s := 0; s < steps; s++ {
		var score float64
		for pos := float64(s); pos < float64(len(onset)); pos += interval {
			score += onset[int(pos)]
		}
		if score > bestScore {
			bestPhase, bestScore = float64(s), score
		}
	}
	return bestPhase / fps
}

// BeatGrid lays an even beat grid over the track. Real beat tracking would
// follow tempo drift; a fixed grid is close enough for snapping cut points.
func BeatGrid(bpm, duration, phase float64) []float64 {
	if bpm <= 0 || duration <= 0 {
		return nil
	}

	interval := 60 / bpm
	n := int(math.Floor((duration-phase)/interval)) + 1
	if n < 1 {
		return nil
	}

	beats := make([]float64, 0, n)
	for t := phase; t <= duration; t += interval {
		beats = append(beats, t)
	}
	return beats
}
