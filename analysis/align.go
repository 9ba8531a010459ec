package analysis

import (
	"fmt"
	"math"
	"sort"

	"mixdeck/util"
)

// PopularitySample is one window of an externally-sourced replay-intensity
// curve, normalized so Score is in [0,1].
type PopularitySample struct {
	Start float64
	End   float64
	Score float64
}

// PreferredStart blends a platform popularity curve with the local energy
// curve to pick a raw window start. The popularity suggestion wins when its
// window carries at least half the energy of the locally best window, or
// when the crowd signal is strong on its own (score above 0.7); otherwise
// the locally detected energy peak wins. No popularity data means pure
// local selection.
func PreferredStart(curve []float64, o Options, windowLen float64, pop []PopularitySample) float64 {
	localStart := bestWindowStart(curve, o, windowLen)
	if len(pop) == 0 {
		return localStart
	}

	best := pop[0]
	for _, p := range pop[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	if best.Score > 0.7 {
		return best.Start
	}

	localMean := windowMean(curve, o, localStart, windowLen)
	popMean := windowMean(curve, o, best.Start, windowLen)
	if localMean > 0 && popMean >= 0.5*localMean {
		return best.Start
	}
	return localStart
}

func windowMean(curve []float64, o Options, start, windowLen float64) float64 {
	fps := o.framesPerSecond()
	lo := max(0, int(start*fps))
	hi := min(len(curve), int((start+windowLen)*fps))
	if lo >= hi {
		return 0
	}

	var sum float64
	for _, v := range curve[lo:hi] {
		sum += v
	}
	return sum / float64(hi-lo)
}

// bestWindowStart returns the start of the windowLen-second window with the
// highest mean energy.
func bestWindowStart(curve []float64, o Options, windowLen float64) float64 {
	fps := o.framesPerSecond()
	frames := int(windowLen * fps)
	if frames < 1 || len(curve) <= frames {
		return 0
	}

	prefix := make([]float64, len(curve)+1)
	for i, v := range curve {
		prefix[i+1] = prefix[i] + v
	}

	bestStart, bestSum := 0, prefix[frames]
	for start := 1; start+frames <= len(curve); start++ {
		if sum := prefix[start+frames] - prefix[start]; sum > bestSum {
			bestStart, bestSum = start, sum
		}
	}
	return float64(bestStart) / fps
}

// AlignWindow snaps a raw window onto musical boundaries: the start moves
// forward to the next beat (never earlier, so a lead-in is not clipped) and
// the end moves to a nearby low-loudness dip, or backward to a beat when no
// clean dip exists. Alignment that would shrink the window below minLen is
// abandoned and the raw window returned unchanged.
func AlignWindow(start, end float64, beats, rms []float64, o Options, minLen float64) (float64, float64) {
	alignedStart := snapForward(start, beats)
	if alignedStart >= end {
		alignedStart = start
	}

	alignedEnd, ok := phraseDip(end, rms, o)
	if !ok {
		alignedEnd = snapBackward(end, beats)
	}
	if alignedEnd <= alignedStart {
		alignedEnd = end
	}

	if alignedEnd-alignedStart < minLen {
		return start, end
	}
	return alignedStart, alignedEnd
}

// Refine reworks a result for externally-sourced video that came with a
// popularity curve: the primary segment is replaced by a crowd-and-energy
// chosen window, beat-aligned, sized by the track's overall energy. Detected
// segments that overlap the new primary are dropped. Without popularity data
// the result passes through untouched.
func Refine(r Result, o Options, pop []PopularitySample, minAligned float64) Result {
	opts := o.withDefaults()
	if len(pop) == 0 || len(r.Curve) == 0 {
		return r
	}

	fps := opts.framesPerSecond()
	trackDur := float64(len(r.Curve)) / fps

	winLen := TargetDuration(r.OverallEnergy, trackDur)
	start := PreferredStart(r.Curve, opts, winLen, pop)
	end := math.Min(start+winLen, trackDur)

	start, end = AlignWindow(start, end, r.Beats, r.RMS, opts, minAligned)
	if end-start <= 0 {
		return r
	}

	lo := int(start * fps)
	hi := min(int(end*fps), len(r.Curve))
	var sum float64
	for _, v := range r.Curve[lo:hi] {
		sum += v
	}
	energy := 0.0
	if hi > lo {
		energy = sum / float64(hi-lo) * 100
	}

	primary := Segment{
		Start:    util.Round2(start),
		End:      util.Round2(end),
		Duration: util.Round2(end - start),
		Energy:   util.Round1(energy),
		Primary:  true,
		Label:    "segment_1",
	}

	kept := []Segment{primary}
	for _, s := range r.Segments {
		if s.Start < primary.End+opts.MinGap && primary.Start < s.End+opts.MinGap {
			continue
		}
		s.Primary = false
		kept = append(kept, s)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	for i := range kept {
		kept[i].Label = fmt.Sprintf("segment_%d", i+1)
	}

	r.Segments = kept
	return r
}

// snapForward returns the first beat at or after t, or t if none exists.
func snapForward(t float64, beats []float64) float64 {
	i := sort.SearchFloat64s(beats, t)
	if i == len(beats) {
		return t
	}
	return beats[i]
}

// snapBackward returns the last beat at or before t, or t if none exists.
func snapBackward(t float64, beats []float64) float64 {
	i := sort.SearchFloat64s(beats, t)
	if i == 0 {
		return t
	}
	return beats[i-1]
}

// phraseDip scans ±2s of loudness around t for a clear local minimum. A dip
// counts only if it sits well below the surrounding level; otherwise there is
// no phrase boundary here and the caller falls back to the beat grid.
func phraseDip(t float64, rms []float64, o Options) (float64, bool) {
	fps := o.framesPerSecond()
	span := int(2 * fps)
	center := int(t * fps)

	lo := max(0, center-span)
	hi := min(len(rms), center+span+1)
	if hi-lo < 3 {
		return t, false
	}

	minIdx := lo
	var sum float64
	for i := lo; i < hi; i++ {
		sum += rms[i]
		if rms[i] < rms[minIdx] {
			minIdx = i
		}
	}
	mean := sum / float64(hi-lo)

	if mean == 0 || rms[minIdx] >= 0.7*mean {
		return t, false
	}
	return float64(minIdx) / fps, true
}
