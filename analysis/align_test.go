package analysis

import (
	"math"
	"testing"
)

func TestPreferredStartFollowsStrongPopularity(t *testing.T) {
	o := testOptions()
	fps := o.framesPerSecond()

	// Local energy peaks near 10s, but the crowd replays 40s hard.
	curve := make([]float64, int(60*fps))
	for i := range curve {
		sec := float64(i) / fps
		curve[i] = 0.3 + 0.5*math.Exp(-((sec-10)/3)*((sec-10)/3))
	}

	pop := []PopularitySample{
		{Start: 0, End: 20, Score: 0.2},
		{Start: 40, End: 50, Score: 0.9},
	}

	start := PreferredStart(curve, o, 8, pop)
	if start != 40 {
		t.Errorf("score 0.9 should force the popularity start, got %v", start)
	}
}

func TestPreferredStartRejectsDeadPopularity(t *testing.T) {
	o := testOptions()
	fps := o.framesPerSecond()

	// Energy lives entirely in the first half; the suggested window at 45s
	// is nearly silent and its score is weak.
	curve := make([]float64, int(60*fps))
	for i := range curve {
		sec := float64(i) / fps
		if sec < 30 {
			curve[i] = 0.8
		} else {
			curve[i] = 0.6 * math.Exp(-(sec - 30))
		}
	}

	pop := []PopularitySample{{Start: 45, End: 55, Score: 0.3}}

	start := PreferredStart(curve, o, 8, pop)
	if start >= 30 {
		t.Errorf("weak popularity over dead air should lose to local energy, got start %v", start)
	}
}

func TestPreferredStartWithoutPopularity(t *testing.T) {
	o := testOptions()
	fps := o.framesPerSecond()

	curve := make([]float64, int(60*fps))
	for i := range curve {
		sec := float64(i) / fps
		curve[i] = math.Exp(-((sec - 42) / 4) * ((sec - 42) / 4))
	}

	start := PreferredStart(curve, o, 8, nil)
	if start < 34 || start > 44 {
		t.Errorf("expected the window to land on the 42s peak, got start %v", start)
	}
}

func TestAlignWindowSnapsToBeats(t *testing.T) {
	o := testOptions()
	beats := BeatGrid(120, 120, 0)

	rms := make([]float64, int(120*o.framesPerSecond()))
	for i := range rms {
		rms[i] = 1.0
	}

	start, end := AlignWindow(10.2, 70.2, beats, rms, o, 40)

	// Start snaps forward to the next beat; flat loudness has no dip, so the
	// end snaps backward to a beat.
	if start != 10.5 {
		t.Errorf("start should snap forward to 10.5, got %v", start)
	}
	if end != 70.0 {
		t.Errorf("end should snap backward to 70.0, got %v", end)
	}
}

func TestAlignWindowAbandonsWhenTooShort(t *testing.T) {
	o := testOptions()
	beats := []float64{0, 30, 60}

	rms := make([]float64, int(120*o.framesPerSecond()))
	for i := range rms {
		rms[i] = 1.0
	}

	// Snapping 10.2 forward to 30 and 52 back to 30 would leave nothing;
	// the raw window must come back instead.
	start, end := AlignWindow(10.2, 52, beats, rms, o, 40)
	if start != 10.2 || end != 52 {
		t.Errorf("alignment below the minimum should be abandoned, got [%v, %v]", start, end)
	}
}

func TestTargetDurationBands(t *testing.T) {
	if d := TargetDuration(90, 300); d < 45 || d > 48 {
		t.Errorf("high energy should target 45-48s, got %v", d)
	}
	if d := TargetDuration(55, 300); d < 55 || d > 70 {
		t.Errorf("mid energy should target 55-70s, got %v", d)
	}
	if d := TargetDuration(10, 300); d < 70 || d > 90 {
		t.Errorf("low energy should target 70-90s, got %v", d)
	}
	if d := TargetDuration(10, 60); d != 60 {
		t.Errorf("target must clamp to the track length, got %v", d)
	}
}

func TestFallbackWindowChorusFractions(t *testing.T) {
	cases := []struct {
		duration float64
		want     float64
	}{
		{300, 96},   // >240s: 32%
		{200, 56},   // >180s: 28%
		{150, 33},   // >120s: 22%
		{100, 0},    // short tracks start at the top
	}

	for _, tc := range cases {
		start, end := FallbackWindow(tc.duration, 60)
		if math.Abs(start-tc.want) > 0.01 {
			t.Errorf("duration %v: start %v, want %v", tc.duration, start, tc.want)
		}
		if end > tc.duration {
			t.Errorf("duration %v: end %v past track end", tc.duration, end)
		}
	}
}

func TestRefineReplacesPrimary(t *testing.T) {
	o := testOptions()
	fps := o.framesPerSecond()

	curve := make([]float64, int(240*fps))
	for i := range curve {
		curve[i] = 0.5
	}

	r := Result{
		OverallEnergy: 80,
		Curve:         curve,
		RMS:           curve,
		Beats:         BeatGrid(120, 240, 0),
		Segments: []Segment{
			{Start: 10, End: 60, Duration: 50, Energy: 70, Primary: true, Label: "segment_1"},
		},
	}

	pop := []PopularitySample{{Start: 150, End: 160, Score: 0.95}}
	refined := Refine(r, o, pop, 40)

	primaries := 0
	for _, seg := range refined.Segments {
		if seg.Primary {
			primaries++
			if seg.Start < 140 {
				t.Errorf("primary should move near the popularity window, got start %v", seg.Start)
			}
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary after refine, got %d", primaries)
	}
}

func TestRefineWithoutPopularityIsIdentity(t *testing.T) {
	r := Result{
		OverallEnergy: 50,
		Curve:         []float64{0.5, 0.5},
		Segments:      []Segment{{Start: 1, End: 2, Duration: 1, Primary: true}},
	}
	refined := Refine(r, testOptions(), nil, 40)
	if len(refined.Segments) != 1 || refined.Segments[0].Start != 1 {
		t.Errorf("refine without popularity should be a no-op, got %+v", refined.Segments)
	}
}
