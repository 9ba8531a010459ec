package analysis

import (
	"math"
	"testing"
)

func testOptions() Options {
	return Options{
		SampleRate:  8000,
		FrameSize:   1024,
		Hop:         512,
		MinLength:   5,
		MaxLength:   10,
		MaxSegments: 3,
		MinGap:      3,
	}
}

func TestAnalyzeEmptySignal(t *testing.T) {
	if _, err := Analyze(nil, testOptions()); err == nil {
		t.Fatal("expected an error for an empty signal")
	}
}

func TestAnalyzeSilenceDoesNotCrash(t *testing.T) {
	samples := make([]float64, 8000*30) // 30s of silence

	result, err := Analyze(samples, testOptions())
	if err != nil {
		t.Fatalf("silence should analyze, got %v", err)
	}
	if result.OverallEnergy != 0 {
		t.Errorf("silence should have zero energy, got %v", result.OverallEnergy)
	}
	if result.BPM != DefaultBPM {
		t.Errorf("silence should fall back to %v BPM, got %v", DefaultBPM, result.BPM)
	}
}

func TestNormalizeGuardsZeroRange(t *testing.T) {
	flat := []float64{0.5, 0.5, 0.5, 0.5}
	for i, v := range normalize(flat) {
		if v != 0 {
			t.Fatalf("flat curve should normalize to zeros, index %d is %v", i, v)
		}
	}

	ramp := normalize([]float64{1, 2, 3})
	if ramp[0] != 0 || ramp[2] != 1 {
		t.Errorf("expected [0 .. 1], got %v", ramp)
	}
}

func TestSmoothPreservesLengthAndRange(t *testing.T) {
	curve := make([]float64, 200)
	for i := range curve {
		curve[i] = math.Abs(math.Sin(float64(i) / 7))
	}

	out := smooth(curve)
	if len(out) != len(curve) {
		t.Fatalf("smoothing changed length: %d -> %d", len(curve), len(out))
	}
	for i, v := range out {
		if v < 0 || v > 1 {
			t.Errorf("smoothed value %d out of range: %v", i, v)
		}
	}

	short := []float64{1, 2, 3}
	if got := smooth(short); len(got) != 3 || got[1] != 2 {
		t.Errorf("short curves should pass through, got %v", got)
	}
}

func TestFFTSineMagnitude(t *testing.T) {
	// A pure tone at bin 8 should dominate the spectrum.
	n := 256
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * 8 * float64(i) / float64(n))
	}

	fft(re, im)

	peak, peakBin := 0.0, 0
	for k := 0; k <= n/2; k++ {
		if m := math.Hypot(re[k], im[k]); m > peak {
			peak, peakBin = m, k
		}
	}
	if peakBin != 8 {
		t.Errorf("expected spectral peak at bin 8, got %d", peakBin)
	}
}

func TestSegmentInvariants(t *testing.T) {
	o := testOptions()
	fps := o.framesPerSecond()

	// A 120s curve with three energetic bumps.
	curve := make([]float64, int(120*fps))
	bump := func(centerSec, widthSec, height float64) {
		for i := range curve {
			x := (float64(i)/fps - centerSec) / widthSec
			curve[i] += height * math.Exp(-x*x)
		}
	}
	bump(20, 5, 1.0)
	bump(60, 5, 0.8)
	bump(100, 5, 0.9)

	segments := findPeakSegments(curve, o)
	if len(segments) == 0 {
		t.Fatal("expected segments on a bumpy curve")
	}
	if len(segments) > o.MaxSegments {
		t.Fatalf("got %d segments, max is %d", len(segments), o.MaxSegments)
	}

	primaries := 0
	for i, seg := range segments {
		if seg.End <= seg.Start {
			t.Errorf("segment %d: end %v <= start %v", i, seg.End, seg.Start)
		}
		if math.Abs(seg.Duration-(seg.End-seg.Start)) > 0.02 {
			t.Errorf("segment %d: duration %v != end-start %v", i, seg.Duration, seg.End-seg.Start)
		}
		if seg.Primary {
			primaries++
		}
		if i > 0 {
			if seg.Start < segments[i-1].Start {
				t.Errorf("segments not sorted by start: %v after %v", seg.Start, segments[i-1].Start)
			}
			if seg.Start-segments[i-1].End < o.MinGap-0.05 {
				t.Errorf("segments %d and %d closer than min gap: %v",
					i-1, i, seg.Start-segments[i-1].End)
			}
		}
	}
	if primaries != 1 {
		t.Errorf("expected exactly one primary segment, got %d", primaries)
	}
}

func TestEstimateBPMClickTrack(t *testing.T) {
	o := testOptions()
	fps := o.framesPerSecond()

	// Synthetic onset envelope pulsing at 120 BPM for two minutes.
	interval := 60.0 / 120.0 * fps
	onset := make([]float64, int(120*fps))
	for beat := 0.0; int(beat) < len(onset); beat += interval {
		onset[int(beat)] = 1.0
	}

	bpm := EstimateBPM(onset, o)
	if math.Abs(bpm-120) > 10 {
		t.Errorf("expected about 120 BPM, got %v", bpm)
	}
}

func TestEstimateBPMFlatEnvelope(t *testing.T) {
	onset := make([]float64, 4000)
	if bpm := EstimateBPM(onset, testOptions()); bpm != DefaultBPM {
		t.Errorf("flat envelope should fall back to %v, got %v", DefaultBPM, bpm)
	}
}

func TestBeatGridSpacing(t *testing.T) {
	beats := BeatGrid(120, 10, 0.25)
	if len(beats) == 0 {
		t.Fatal("expected beats")
	}
	if beats[0] != 0.25 {
		t.Errorf("first beat should sit at the phase, got %v", beats[0])
	}
	for i := 1; i < len(beats); i++ {
		if math.Abs(beats[i]-beats[i-1]-0.5) > 1e-9 {
			t.Fatalf("beats not 0.5s apart at %d: %v", i, beats[i]-beats[i-1])
		}
	}
	if last := beats[len(beats)-1]; last > 10 {
		t.Errorf("beat past the track end: %v", last)
	}
}
