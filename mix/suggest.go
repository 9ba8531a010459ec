package mix

import (
	"sort"

	"github.com/samber/lo"
)

// Suggestion is one ranked candidate for the next segment to play.
type Suggestion struct {
	Entry Entry
	Score float64
}

// SuggestNext ranks candidates to follow the currently playing entry, for
// interactive "what next" picks outside a full re-sequence. Scoring starts
// at 50 and rewards tempo closeness (up to 30), energy closeness (up to 20),
// a language change (10), and a language not heard recently (5).
func SuggestNext(current Entry, candidates []Entry, recentLanguages []string) []Suggestion {
	suggestions := make([]Suggestion, len(candidates))
	for i, c := range candidates {
		score := 50.0
		score += max(0, 30-tempoDistance(current.BPM, c.BPM))
		score += max(0, 20-40*energyDistance(current, c))
		if c.Language != current.Language {
			score += 10
		}
		if !lo.Contains(recentLanguages, c.Language) {
			score += 5
		}
		suggestions[i] = Suggestion{Entry: c, Score: score}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	return suggestions
}
