package mix

import (
	"math"

	"mixdeck/util"
)

// unknownTempoPenalty stands in for the distance to a track with no BPM:
// bad enough to avoid, not bad enough to strand the track.
const unknownTempoPenalty = 10.0

// tempoDistance measures how far apart two tempos feel. Half-time and
// double-time relationships mix well, so 80 against 160 BPM scores as a
// scaled-down near-match instead of an 80 BPM gulf. The harmonic terms
// always relate the slower tempo to the faster one, so the distance is
// symmetric in its arguments.
func tempoDistance(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return unknownTempoPenalty
	}

	slow, fast := math.Min(a, b), math.Max(a, b)
	direct := fast - slow
	half := math.Abs(slow-fast/2) * 1.5
	double := math.Abs(slow*2-fast) * 1.5
	return min(direct, half, double)
}

// energyDistance is the normalized [0,1] gap between two energy scores.
func energyDistance(a, b Entry) float64 {
	return math.Abs(a.Energy-b.Energy) / 100
}

// smoothness scores an adjacent pair 0-100. Tempo jumps hurt twice as much
// per BPM as a full-scale energy jump hurts in total.
func smoothness(a, b Entry) float64 {
	score := 100 - 2*tempoDistance(a.BPM, b.BPM) - 50*energyDistance(a, b)
	return util.ClampFloat(score, 0, 100)
}

func transitionBetween(entries []Entry, i int) Transition {
	a, b := entries[i], entries[i+1]
	return Transition{
		From:         i,
		To:           i + 1,
		TempoDelta:   util.Round1(tempoDistance(a.BPM, b.BPM)),
		EnergyDelta:  util.Round1(math.Abs(a.Energy - b.Energy)),
		SameLanguage: a.Language == b.Language,
		Smoothness:   util.Round1(smoothness(a, b)),
	}
}
