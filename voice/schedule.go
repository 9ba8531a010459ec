package voice

import (
	"math"

	"mixdeck/util"
)

// Cue is one scheduled spoken line. At is anchored to the final output
// timeline, not source-track time. Segment is the plan position the cue
// announces, meaningful for transition cues only.
type Cue struct {
	Text    string  `json:"text"`
	Kind    Kind    `json:"kind"`
	At      float64 `json:"scheduled_time"`
	Segment int     `json:"segment_index"`
}

// Timing describes the final timeline's shape to the scheduler.
type Timing struct {
	IntroDuration float64
	OutroDuration float64
	Crossfade     float64 // overlap consumed by each transition join
	SegmentDurs   []float64
}

// SegmentStarts computes where each segment begins on the final timeline:
// intro first, then each segment's start is the previous start plus its
// duration minus the crossfade the join consumed.
func (t Timing) SegmentStarts() []float64 {
	starts := make([]float64, len(t.SegmentDurs))
	at := t.IntroDuration
	for i, d := range t.SegmentDurs {
		starts[i] = at
		at += d - t.Crossfade
	}
	return starts
}

// End is the final timeline's total length.
func (t Timing) End() float64 {
	starts := t.SegmentStarts()
	if len(starts) == 0 {
		return t.IntroDuration + t.OutroDuration
	}
	last := len(starts) - 1
	return starts[last] + t.SegmentDurs[last] + t.OutroDuration
}

// Schedule places script cues on the final timeline. Intro cues speak half a
// second in, transition cues speak as their segment lands, and outro cues
// speak over the closing card.
func Schedule(cues []Cue, timing Timing) []Cue {
	starts := timing.SegmentStarts()

	scheduled := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		switch cue.Kind {
		case KindIntro:
			cue.At = 0.5
		case KindOutro:
			// With no outro card the natural slot would land past the end
			// of the video and the mixdown would drop the line silently, so
			// the cue is pulled back inside the timeline.
			end := timing.End()
			cue.At = util.ClampFloat(end-timing.OutroDuration+0.5, 0, math.Max(0, end-1.5))
		default:
			if cue.Segment < 0 || cue.Segment >= len(starts) {
				continue
			}
			cue.At = starts[cue.Segment]
		}
		cue.At = util.Round2(cue.At)
		scheduled = append(scheduled, cue)
	}
	return scheduled
}
