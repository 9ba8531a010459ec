package mix

// Sequence builds a play order for the given entries under one strategy and
// scores the result.
func Sequence(entries []Entry, params Params) Plan {
	p := params.withDefaults()

	if len(entries) == 0 {
		return Plan{Strategy: p.Strategy}
	}
	if len(entries) == 1 {
		return Plan{
			Entries:  append([]Entry(nil), entries...),
			Quality:  100,
			Strategy: p.Strategy,
		}
	}

	var ordered []Entry
	switch p.Strategy {
	case "tempo_smooth":
		ordered = tempoSmooth(entries)
	case "language_variety":
		ordered = languageVariety(entries, p.MaxSameLanguage)
	case "energy_curve":
		ordered = energyCurve(entries, p.Curve, p.Seed)
	default: // balanced
		ordered = enforceVariety(energyCurve(entries, p.Curve, p.Seed), p.MaxSameLanguage)
	}

	transitions := make([]Transition, len(ordered)-1)
	for i := range transitions {
		transitions[i] = transitionBetween(ordered, i)
	}

	return Plan{
		Entries:     ordered,
		Transitions: transitions,
		Quality:     quality(ordered, transitions, p.MaxSameLanguage),
		Strategy:    p.Strategy,
	}
}

// quality is the mean transition smoothness, docked 5 points for every run of
// maxRun+1 same-language entries that slipped through.
func quality(ordered []Entry, transitions []Transition, maxRun int) float64 {
	if len(transitions) == 0 {
		return 100
	}

	var sum float64
	for _, t := range transitions {
		sum += t.Smoothness
	}
	score := sum / float64(len(transitions))

	window := maxRun + 1
	for i := 0; i+window <= len(ordered); i++ {
		same := true
		for j := i + 1; j < i+window; j++ {
			if ordered[j].Language != ordered[i].Language {
				same = false
				break
			}
		}
		if same {
			score -= 5
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}
