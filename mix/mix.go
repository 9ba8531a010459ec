// Package mix orders detected song segments into a playable set. Ordering is
// heuristic: nearest-neighbor tempo matching, language variety constraints,
// and energy-curve shaping, scored by how smooth each adjacent transition
// would feel. Plans are deterministic for a given input and seed.
package mix

// Entry pairs one detected segment with its track's metadata. Entries are
// the sequencer's unit of work; a built Plan never mutates them.
type Entry struct {
	SourceID string  `json:"source_id"`
	Start    float64 `json:"start_time"`
	End      float64 `json:"end_time"`
	Duration float64 `json:"duration"`
	Label    string  `json:"label"`

	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Language string  `json:"language"`
	BPM      float64 `json:"bpm"`    // 0 means unknown
	Energy   float64 `json:"energy"` // 0-100
}

// Transition describes the seam between two adjacent plan entries.
type Transition struct {
	From         int     `json:"from"` // position in Plan.Entries
	To           int     `json:"to"`
	TempoDelta   float64 `json:"tempo_delta"`
	EnergyDelta  float64 `json:"energy_delta"` // 0-100 scale
	SameLanguage bool    `json:"same_language"`
	Smoothness   float64 `json:"smoothness"` // 0-100
}

// Plan is the finished work order: entries in play order, the transitions
// between them, and an overall quality score.
type Plan struct {
	Entries     []Entry      `json:"entries"`
	Transitions []Transition `json:"transitions"`
	Quality     float64      `json:"quality_score"`
	Strategy    string       `json:"strategy"`
}

// TotalDuration is the summed segment time, before transition overlap.
func (p Plan) TotalDuration() float64 {
	var total float64
	for _, e := range p.Entries {
		total += e.Duration
	}
	return total
}

// Params selects and tunes a sequencing strategy. Zero values fall back to
// the balanced strategy with a peak-middle curve and runs of at most 2
// same-language segments.
type Params struct {
	Strategy        string // tempo_smooth, language_variety, energy_curve, balanced
	Curve           string // peak_middle, ascending, descending, wave
	MaxSameLanguage int
	Seed            int64 // drives the shuffles some curves use
}

func (p Params) withDefaults() Params {
	if p.Strategy == "" {
		p.Strategy = "balanced"
	}
	if p.Curve == "" {
		p.Curve = "peak_middle"
	}
	if p.MaxSameLanguage <= 0 {
		p.MaxSameLanguage = 2
	}
	return p
}
