package voice

import (
	"math"
	"testing"

	"mixdeck/mix"
)

func testPlan() mix.Plan {
	return mix.Plan{Entries: []mix.Entry{
		{SourceID: "a", Title: "First", Language: "en", Energy: 50, Duration: 60},
		{SourceID: "b", Title: "Second", Language: "es", Energy: 55, Duration: 50},
		{SourceID: "c", Title: "Third", Language: "es", Energy: 85, Duration: 70},
	}}
}

func TestSegmentStartsCumulative(t *testing.T) {
	timing := Timing{
		IntroDuration: 4,
		Crossfade:     3.5,
		SegmentDurs:   []float64{60, 50, 70},
	}

	starts := timing.SegmentStarts()
	want := []float64{4, 4 + 60 - 3.5, 4 + 60 - 3.5 + 50 - 3.5}
	for i := range want {
		if math.Abs(starts[i]-want[i]) > 1e-9 {
			t.Errorf("start %d: got %v, want %v", i, starts[i], want[i])
		}
	}
}

func TestTimingEnd(t *testing.T) {
	timing := Timing{
		IntroDuration: 4,
		OutroDuration: 3,
		Crossfade:     3.5,
		SegmentDurs:   []float64{60, 50},
	}

	// 4 + 60 - 3.5 = 60.5 start of last; + 50 + 3 outro.
	if end := timing.End(); math.Abs(end-113.5) > 1e-9 {
		t.Errorf("got end %v, want 113.5", end)
	}
}

func TestScriptFrequencyMinimal(t *testing.T) {
	cues := Script(testPlan(), FrequencyMinimal, 1)
	if len(cues) != 2 {
		t.Fatalf("minimal should speak intro and outro only, got %d cues", len(cues))
	}
	if cues[0].Kind != KindIntro || cues[1].Kind != KindOutro {
		t.Errorf("unexpected kinds: %v, %v", cues[0].Kind, cues[1].Kind)
	}
}

func TestScriptModerateAnnouncesChanges(t *testing.T) {
	cues := Script(testPlan(), FrequencyModerate, 1)

	// en->es switch at segment 1 and the 30-point jump into segment 2.
	var transitions []Cue
	for _, c := range cues {
		if c.Kind == KindTransition {
			transitions = append(transitions, c)
		}
	}
	if len(transitions) != 2 {
		t.Fatalf("expected 2 transition cues, got %d", len(transitions))
	}
	if transitions[0].Segment != 1 || transitions[1].Segment != 2 {
		t.Errorf("cues attached to wrong segments: %d, %d", transitions[0].Segment, transitions[1].Segment)
	}
}

func TestScriptDeterministicPerSeed(t *testing.T) {
	a := Script(testPlan(), FrequencyFrequent, 42)
	b := Script(testPlan(), FrequencyFrequent, 42)
	if len(a) != len(b) {
		t.Fatalf("cue counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			t.Errorf("cue %d differs across runs: %q vs %q", i, a[i].Text, b[i].Text)
		}
	}
}

func TestScheduleAnchorsToFinalTimeline(t *testing.T) {
	timing := Timing{
		IntroDuration: 4,
		OutroDuration: 3,
		Crossfade:     3.5,
		SegmentDurs:   []float64{60, 50, 70},
	}

	cues := Schedule(Script(testPlan(), FrequencyModerate, 1), timing)
	starts := timing.SegmentStarts()

	for _, cue := range cues {
		switch cue.Kind {
		case KindIntro:
			if cue.At != 0.5 {
				t.Errorf("intro cue at %v, want 0.5", cue.At)
			}
		case KindOutro:
			want := timing.End() - timing.OutroDuration + 0.5
			if math.Abs(cue.At-want) > 0.01 {
				t.Errorf("outro cue at %v, want %v", cue.At, want)
			}
		case KindTransition:
			want := starts[cue.Segment]
			if math.Abs(cue.At-want) > 0.01 {
				t.Errorf("transition cue for segment %d at %v, want %v", cue.Segment, cue.At, want)
			}
		}
	}
}

func TestScheduleOutroStaysInsideTimeline(t *testing.T) {
	timing := Timing{
		IntroDuration: 4,
		Crossfade:     3.5,
		SegmentDurs:   []float64{60, 50},
	}

	cues := Schedule([]Cue{{Kind: KindOutro, Text: "bye"}}, timing)
	if len(cues) != 1 {
		t.Fatalf("outro cue lost: got %d cues", len(cues))
	}
	// Without an outro card there is no slot after the music; the cue must
	// still speak before the video ends or the mixdown drops it.
	if end := timing.End(); cues[0].At >= end || cues[0].At < 0 {
		t.Errorf("outro cue at %v is outside the 0-%v timeline", cues[0].At, end)
	}
}

func TestScheduleDropsOutOfRangeCues(t *testing.T) {
	timing := Timing{SegmentDurs: []float64{60}}
	cues := Schedule([]Cue{{Kind: KindTransition, Segment: 5}}, timing)
	if len(cues) != 0 {
		t.Errorf("cue for a missing segment should be dropped, got %d", len(cues))
	}
}
