// Package analysis detects the high-energy windows of a music track from its
// decoded audio signal. It combines loudness, brightness, and rhythmic punch
// into one energy curve, finds plateau windows on that curve, and estimates
// tempo. Partial results beat no results: tempo estimation falls back to a
// default instead of failing the whole analysis.
package analysis

import (
	"fmt"

	"mixdeck/util"
)

// Segment is one detected high-energy window inside a track. Times are in
// seconds from the start of the source. Immutable once returned.
type Segment struct {
	Start    float64 `json:"start_time"`
	End      float64 `json:"end_time"`
	Duration float64 `json:"duration"`
	Energy   float64 `json:"energy_score"` // 0-100
	Primary  bool    `json:"is_primary"`
	Label    string  `json:"label"`
}

// Options controls segment detection. Zero values are replaced by defaults.
type Options struct {
	SampleRate  int
	FrameSize   int
	Hop         int
	MinLength   float64 // seconds
	MaxLength   float64 // seconds
	MaxSegments int
	MinGap      float64 // seconds between segments of the same track
}

// DefaultOptions returns the analyzer defaults: 22.05kHz mono, 2048-sample
// frames with a 512 hop, 45-90s segments, at most 3 per track, 30s apart.
func DefaultOptions() Options {
	return Options{
		SampleRate:  22050,
		FrameSize:   2048,
		Hop:         512,
		MinLength:   45,
		MaxLength:   90,
		MaxSegments: 3,
		MinGap:      30,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SampleRate <= 0 {
		o.SampleRate = d.SampleRate
	}
	if o.FrameSize <= 0 {
		o.FrameSize = d.FrameSize
	}
	if o.Hop <= 0 {
		o.Hop = d.Hop
	}
	if o.MinLength <= 0 {
		o.MinLength = d.MinLength
	}
	if o.MaxLength <= o.MinLength {
		o.MaxLength = o.MinLength * 2
	}
	if o.MaxSegments <= 0 {
		o.MaxSegments = d.MaxSegments
	}
	if o.MinGap < 0 {
		o.MinGap = d.MinGap
	}
	return o
}

// framesPerSecond is the rate of the per-frame feature curves.
func (o Options) framesPerSecond() float64 {
	return float64(o.SampleRate) / float64(o.Hop)
}

// Result is the complete analysis of one track.
type Result struct {
	BPM           float64
	OverallEnergy float64 // 0-100
	Segments      []Segment
	Curve         []float64 // smoothed composite energy, one value per hop
	RMS           []float64 // raw loudness curve, used for phrase alignment
	Beats         []float64 // estimated beat positions in seconds
}

// Analyze runs the full analysis over a decoded mono signal.
func Analyze(samples []float64, opts Options) (Result, error) {
	o := opts.withDefaults()

	if len(samples) == 0 {
		return Result{}, fmt.Errorf("no audio samples to analyze")
	}

	rms, centroid, onset := features(samples, o)
	curve := compositeCurve(rms, centroid, onset)

	overall := 0.0
	for _, v := range curve {
		overall += v
	}
	if len(curve) > 0 {
		overall = overall / float64(len(curve)) * 100
	}

	bpm := EstimateBPM(onset, o)
	duration := float64(len(samples)) / float64(o.SampleRate)
	beats := BeatGrid(bpm, duration, BeatPhase(onset, o, bpm))

	segments := findPeakSegments(curve, o)

	return Result{
		BPM:           util.Round1(bpm),
		OverallEnergy: util.Round1(overall),
		Segments:      segments,
		Curve:         curve,
		RMS:           rms,
		Beats:         beats,
	}, nil
}
