package mix

import (
	"math"
	"math/rand"
	"sort"

	"github.com/samber/lo"
)

// tempoSmooth orders by nearest-neighbor tempo matching: open on the entry
// closest to the set's mean energy, then repeatedly append the unplaced entry
// with the smallest tempo distance to the last pick. Greedy, not globally
// optimal, but O(n²) and deterministic.
func tempoSmooth(entries []Entry) []Entry {
	remaining := append([]Entry(nil), entries...)

	meanEnergy := lo.SumBy(remaining, func(e Entry) float64 { return e.Energy }) / float64(len(remaining))
	first := 0
	for i, e := range remaining {
		if math.Abs(e.Energy-meanEnergy) < math.Abs(remaining[first].Energy-meanEnergy) {
			first = i
		}
	}

	ordered := []Entry{remaining[first]}
	remaining = append(remaining[:first], remaining[first+1:]...)

	for len(remaining) > 0 {
		last := ordered[len(ordered)-1]
		next := 0
		for i, e := range remaining {
			if tempoDistance(last.BPM, e.BPM) < tempoDistance(last.BPM, remaining[next].BPM) {
				next = i
			}
		}
		ordered = append(ordered, remaining[next])
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return ordered
}

// languageVariety keeps runs of one language to at most maxRun. Among the
// entries that would not extend a run past the limit, the closest tempo to
// the previous pick wins; when every candidate would, settle for any entry
// in a different language than the last, and failing even that, give up on
// the constraint for this slot.
func languageVariety(entries []Entry, maxRun int) []Entry {
	remaining := append([]Entry(nil), entries...)
	var ordered []Entry
	run := 0

	for len(remaining) > 0 {
		pick := -1

		if len(ordered) > 0 {
			last := ordered[len(ordered)-1]
			for i, e := range remaining {
				if e.Language == last.Language && run >= maxRun {
					continue
				}
				if pick == -1 || tempoDistance(last.BPM, e.BPM) < tempoDistance(last.BPM, remaining[pick].BPM) {
					pick = i
				}
			}
			if pick == -1 {
				for i, e := range remaining {
					if e.Language != last.Language {
						pick = i
						break
					}
				}
			}
		}
		if pick == -1 {
			pick = 0
		}

		next := remaining[pick]
		if len(ordered) > 0 && next.Language == ordered[len(ordered)-1].Language {
			run++
		} else {
			run = 1
		}
		ordered = append(ordered, next)
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return ordered
}

// enforceVariety reorders as little as possible: it walks the given order and
// only reaches ahead for a different language when the run limit would be
// broken. Used by the balanced strategy on top of energy-curve shaping.
func enforceVariety(entries []Entry, maxRun int) []Entry {
	remaining := append([]Entry(nil), entries...)
	var ordered []Entry
	run := 0

	for len(remaining) > 0 {
		pick := 0
		if len(ordered) > 0 {
			last := ordered[len(ordered)-1]
			if remaining[0].Language == last.Language && run >= maxRun {
				for i := 1; i < len(remaining); i++ {
					if remaining[i].Language != last.Language {
						pick = i
						break
					}
				}
			}
		}

		next := remaining[pick]
		if len(ordered) > 0 && next.Language == ordered[len(ordered)-1].Language {
			run++
		} else {
			run = 1
		}
		ordered = append(ordered, next)
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return ordered
}

// energyCurve reshapes the set to follow a named energy arc. The curves that
// carve the set into tertiles or pairs (peak_middle, wave) degrade to the
// input order on three or fewer entries; there isn't enough material to
// shape.
func energyCurve(entries []Entry, curve string, seed int64) []Entry {
	if len(entries) <= 3 && (curve == "peak_middle" || curve == "wave" || curve == "") {
		return append([]Entry(nil), entries...)
	}

	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Energy < sorted[j].Energy })

	switch curve {
	case "ascending":
		return sorted

	case "descending":
		lo.Reverse(sorted)
		return sorted

	case "wave":
		// Alternate ends of the sorted set: low, high, low, high.
		ordered := make([]Entry, 0, len(sorted))
		for i, j := 0, len(sorted)-1; i <= j; i, j = i+1, j-1 {
			ordered = append(ordered, sorted[i])
			if i != j {
				ordered = append(ordered, sorted[j])
			}
		}
		return ordered

	default: // peak_middle
		return peakMiddle(sorted, seed)
	}
}

// peakMiddle opens on a mid-energy entry, builds by interleaving mid and high
// energy, and winds down on the low-energy entries in shuffled order.
func peakMiddle(sorted []Entry, seed int64) []Entry {
	n := len(sorted)
	low := append([]Entry(nil), sorted[:n/3]...)
	mid := append([]Entry(nil), sorted[n/3:2*n/3]...)
	high := append([]Entry(nil), sorted[2*n/3:]...)

	ordered := make([]Entry, 0, n)
	if len(mid) > 0 {
		ordered = append(ordered, mid[0])
		mid = mid[1:]
	}
	for len(mid) > 0 || len(high) > 0 {
		if len(high) > 0 {
			ordered = append(ordered, high[0])
			high = high[1:]
		}
		if len(mid) > 0 {
			ordered = append(ordered, mid[0])
			mid = mid[1:]
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(low), func(i, j int) { low[i], low[j] = low[j], low[i] })
	return append(ordered, low...)
}
