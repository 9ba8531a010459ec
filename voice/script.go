package voice

import (
	"fmt"
	"math/rand"

	"mixdeck/mix"
)

// Kind classifies where in the mix a cue belongs.
type Kind string

const (
	KindIntro      Kind = "intro"
	KindMid        Kind = "mid"
	KindOutro      Kind = "outro"
	KindTransition Kind = "transition"
)

// Frequency controls how chatty the commentary is.
type Frequency string

const (
	// FrequencyMinimal speaks only at the very start and end.
	FrequencyMinimal Frequency = "minimal"
	// FrequencyModerate also announces language switches and big energy moves.
	FrequencyModerate Frequency = "moderate"
	// FrequencyFrequent announces every incoming track.
	FrequencyFrequent Frequency = "frequent"
)

var introLines = []string{
	"Let's get this mix rolling. %d tracks lined up for you.",
	"Welcome in. I've got %d tracks coming your way tonight.",
	"Here we go, %d tracks back to back. Turn it up.",
}

var outroLines = []string{
	"And that's the set. Thanks for riding along.",
	"That wraps it up. Catch you on the next mix.",
	"All done here. Hope that moved you.",
}

var languageSwitchLines = []string{
	"Switching it up, next one comes in %s.",
	"Time to travel, this one's in %s.",
}

var energyUpLines = []string{
	"Energy's climbing. Here comes %s.",
	"Hold on, we're taking it up with %s.",
}

var energyDownLines = []string{
	"Bringing it down a touch with %s.",
	"Let's breathe for a minute. This is %s.",
}

var nextTrackLines = []string{
	"Up next, %s by %s.",
	"Now playing, %s from %s.",
	"Keeping it moving with %s by %s.",
}

// Script writes the DJ lines for a plan. Cue times are left at zero; the
// scheduler places them on the final timeline afterward. The seed fixes line
// choices so a re-export reads the same script.
func Script(plan mix.Plan, freq Frequency, seed int64) []Cue {
	if len(plan.Entries) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	pick := func(lines []string) string { return lines[rng.Intn(len(lines))] }

	cues := []Cue{{
		Kind: KindIntro,
		Text: fmt.Sprintf(pick(introLines), len(plan.Entries)),
	}}

	for i := 1; i < len(plan.Entries); i++ {
		prev, cur := plan.Entries[i-1], plan.Entries[i]

		var text string
		switch {
		case freq == FrequencyMinimal:
			continue
		case cur.Language != prev.Language && cur.Language != "":
			text = fmt.Sprintf(pick(languageSwitchLines), cur.Language)
		case cur.Energy-prev.Energy > 20:
			text = fmt.Sprintf(pick(energyUpLines), cur.Title)
		case prev.Energy-cur.Energy > 20:
			text = fmt.Sprintf(pick(energyDownLines), cur.Title)
		case freq == FrequencyFrequent:
			text = fmt.Sprintf(pick(nextTrackLines), cur.Title, cur.Artist)
		default:
			continue
		}

		cues = append(cues, Cue{Kind: KindTransition, Text: text, Segment: i})
	}

	cues = append(cues, Cue{Kind: KindOutro, Text: pick(outroLines)})
	return cues
}
