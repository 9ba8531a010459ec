package analysis

import (
	"fmt"
	"sort"

	"mixdeck/util"
)

type candidate struct {
	start, end int // frame indices, end exclusive
	energy     float64
	order      int
}

// findPeakSegments slides a window across the energy curve, extends each
// window to the right while the mean holds up, then greedily keeps the
// strongest non-overlapping candidates. Results come back in timeline order
// with exactly one marked primary.
func findPeakSegments(curve []float64, o Options) []Segment {
	fps := o.framesPerSecond()
	minFrames := int(o.MinLength * fps)
	maxFrames := int(o.MaxLength * fps)
	gapFrames := int(o.MinGap * fps)

	if minFrames < 1 || len(curve) <= minFrames {
		return nil
	}

	// Prefix sums make the repeated window means cheap.
	prefix := make([]float64, len(curve)+1)
	for i, v := range curve {
		prefix[i+1] = prefix[i] + v
	}
	mean := func(start, end int) float64 {
		return (prefix[end] - prefix[start]) / float64(end-start)
	}

	window := (minFrames + maxFrames) / 2
	step := max(1, window/4)
	extStep := max(1, step/2)

	var candidates []candidate
	for start := 0; start < len(curve)-minFrames; start += step {
		bestEnd := start + minFrames
		bestMean := mean(start, bestEnd)

		// Extend rightward while the window keeps (nearly) its energy.
		limit := min(start+maxFrames, len(curve))
		for end := start + minFrames + extStep; end <= limit; end += extStep {
			if m := mean(start, end); m >= bestMean*0.95 {
				bestEnd, bestMean = end, m
			}
		}

		candidates = append(candidates, candidate{start, bestEnd, bestMean, len(candidates)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].energy != candidates[j].energy {
			return candidates[i].energy > candidates[j].energy
		}
		return candidates[i].order < candidates[j].order
	})

	var picked []candidate
	for _, c := range candidates {
		if len(picked) >= o.MaxSegments {
			break
		}
		clear := true
		for _, p := range picked {
			if c.start < p.end+gapFrames && p.start < c.end+gapFrames {
				clear = false
				break
			}
		}
		if clear {
			picked = append(picked, c)
		}
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i].start < picked[j].start })

	primary := 0
	for i, c := range picked {
		if c.energy > picked[primary].energy {
			primary = i
		}
	}

	segments := make([]Segment, len(picked))
	for i, c := range picked {
		start := float64(c.start) / fps
		end := float64(c.end) / fps
		segments[i] = Segment{
			Start:    util.Round2(start),
			End:      util.Round2(end),
			Duration: util.Round2(end - start),
			Energy:   util.Round1(c.energy * 100),
			Primary:  i == primary,
			Label:    fmt.Sprintf("segment_%d", i+1),
		}
	}
	return segments
}
