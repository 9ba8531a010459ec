package media

import (
	"math"
	"strings"
	"testing"
)

func TestTransitionTimingReconcilesStreams(t *testing.T) {
	// First clip's audio is 0.4s shorter than its video; the join must use
	// the reconciled 9.6s for both streams.
	dur1, dur2, trans, offset := TransitionTiming(10.0, 9.6, 12.0, 12.0, 3.5)

	if dur1 != 9.6 {
		t.Errorf("first clip should reconcile to 9.6s, got %v", dur1)
	}
	if dur2 != 12.0 {
		t.Errorf("second clip should stay 12.0s, got %v", dur2)
	}
	if trans != 3.5 {
		t.Errorf("requested 3.5s fits, got %v", trans)
	}
	if math.Abs(offset-6.1) > 1e-9 {
		t.Errorf("offset should be 9.6 - 3.5 = 6.1, got %v", offset)
	}
}

func TestTransitionTimingClampsShortClips(t *testing.T) {
	// 40% of a 4s clip is 1.6s, below the 2s floor.
	_, _, trans, offset := TransitionTiming(4.0, 4.0, 4.0, 4.0, 3.5)
	if trans != 2.0 {
		t.Errorf("transition should clamp to the 2s floor, got %v", trans)
	}
	if offset != 2.0 {
		t.Errorf("offset should be 4.0 - 2.0, got %v", offset)
	}

	// Long clips cap at 40% of the shorter side.
	_, _, trans, _ = TransitionTiming(20.0, 20.0, 10.0, 10.0, 8.0)
	if trans != 4.0 {
		t.Errorf("transition should cap at 40%% of the shorter clip, got %v", trans)
	}
}

func TestReconcileMissingStream(t *testing.T) {
	if d := reconcile(10, 0); d != 10 {
		t.Errorf("missing audio should fall back to video duration, got %v", d)
	}
	if d := reconcile(0, 8); d != 8 {
		t.Errorf("missing video should fall back to audio duration, got %v", d)
	}
}

func TestStyleForRoundRobin(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < len(TransitionStyles); i++ {
		style := StyleFor("random", i)
		if !validStyles[style] {
			t.Errorf("round-robin produced invalid style %q", style)
		}
		seen[style] = true
	}
	if len(seen) != len(TransitionStyles) {
		t.Errorf("round-robin should cycle the whole palette, saw %d of %d", len(seen), len(TransitionStyles))
	}

	if StyleFor("random", 0) != StyleFor("random", len(TransitionStyles)) {
		t.Error("round-robin should wrap around")
	}
	if s := StyleFor("dissolve", 3); s != "dissolve" {
		t.Errorf("explicit valid style should pass through, got %q", s)
	}
	if s := StyleFor("sparkle-explosion", 0); s != "fade" {
		t.Errorf("unknown style should fall back to fade, got %q", s)
	}
}

func TestEscapeText(t *testing.T) {
	got := EscapeText(`D'Angelo: The [Best]`)
	for _, escaped := range []string{`'\''`, `\:`, `\[`, `\]`} {
		if !strings.Contains(got, escaped) {
			t.Errorf("missing escape %q in %q", escaped, got)
		}
	}
	if EscapeText("") != "" {
		t.Error("empty text should stay empty")
	}
}

func TestSegmentVideoFilterOverlay(t *testing.T) {
	spec := OverlaySpec{Title: "Song", Artist: "Artist", Language: "es", Enabled: true, Width: 1280, Height: 720}

	filter := segmentVideoFilter(spec, 60)
	if !strings.Contains(filter, "scale=1280:720") {
		t.Errorf("missing scale in %q", filter)
	}
	if strings.Count(filter, "drawtext") != 3 {
		t.Errorf("expected title, artist, and badge drawtext, got %q", filter)
	}
	if !strings.Contains(filter, "ES") {
		t.Errorf("language badge should be upper-cased, got %q", filter)
	}

	plain := segmentVideoFilter(OverlaySpec{Enabled: false, Width: 640, Height: 480}, 60)
	if strings.Contains(plain, "drawtext") {
		t.Errorf("disabled overlay should not draw text, got %q", plain)
	}
}

func TestDuckExpression(t *testing.T) {
	clips := []VoiceClip{
		{At: 2, Duration: 3},
		{At: 10, Duration: 2.5},
	}

	expr := duckExpression(clips, 0.2)
	want := "if(between(t,2,5)+between(t,10,12.5),0.2,1.0)"
	if expr != want {
		t.Errorf("got %q, want %q", expr, want)
	}
}
