package media

import (
	"context"
	"fmt"
)

// TransitionStyles is the palette used for round-robin selection when the
// caller asks for "random". Ordered from the most reliable styles down.
var TransitionStyles = []string{
	"fade",
	"dissolve",
	"fadeblack",
	"fadewhite",
	"circlecrop",
	"circleopen",
	"radial",
	"wipeleft",
	"wiperight",
	"smoothleft",
	"smoothright",
}

var validStyles = map[string]bool{
	"fade": true, "fadeblack": true, "fadewhite": true, "wipeleft": true,
	"wiperight": true, "wipeup": true, "wipedown": true, "slideleft": true,
	"slideright": true, "slideup": true, "slidedown": true, "circlecrop": true,
	"rectcrop": true, "distance": true, "smoothleft": true, "smoothright": true,
	"smoothup": true, "smoothdown": true, "circleopen": true, "circleclose": true,
	"dissolve": true, "pixelize": true, "radial": true, "hblur": true,
}

// StyleFor resolves the transition style for the index-th join. "random"
// walks the palette round-robin; unknown names fall back to fade.
func StyleFor(requested string, index int) string {
	if requested == "random" || requested == "" {
		return TransitionStyles[index%len(TransitionStyles)]
	}
	if validStyles[requested] {
		return requested
	}
	return "fade"
}

// reconcile returns the usable duration of a clip whose video and audio
// streams disagree: the shorter of the two when both are known, otherwise
// whichever is present.
func reconcile(video, audio float64) float64 {
	if video > 0 && audio > 0 {
		if video < audio {
			return video
		}
		return audio
	}
	if video > audio {
		return video
	}
	return audio
}

// TransitionTiming computes the per-pair join parameters from the raw stream
// durations of both inputs. Both streams of each clip are reconciled to the
// shorter duration so the visual transition and the audio crossfade share
// identical timing. The transition itself is clamped to at least 2s and at
// most 40% of the shorter clip.
func TransitionTiming(v1, a1, v2, a2, requested float64) (dur1, dur2, trans, offset float64) {
	dur1 = reconcile(v1, a1)
	dur2 = reconcile(v2, a2)

	trans = requested
	if trans > dur1*0.4 {
		trans = dur1 * 0.4
	}
	if trans > dur2*0.4 {
		trans = dur2 * 0.4
	}
	if trans < 2.0 {
		trans = 2.0
	}

	offset = dur1 - trans
	if offset < 0 {
		offset = 0
	}
	return dur1, dur2, trans, offset
}

// TransitionJoin joins two clips with an xfade video transition and a
// matching audio crossfade. The caller is responsible for falling back to a
// plain concatenation when the join fails.
func (t *Transcoder) TransitionJoin(ctx context.Context, first, second, out, style string, requested float64) error {
	v1, a1, err := t.StreamDurations(ctx, first)
	if err != nil {
		return fmt.Errorf("probe %s: %w", first, err)
	}
	v2, a2, err := t.StreamDurations(ctx, second)
	if err != nil {
		return fmt.Errorf("probe %s: %w", second, err)
	}

	dur1, dur2, trans, offset := TransitionTiming(v1, a1, v2, a2, requested)
	delayMs := int(offset * 1000)

	fmt.Printf("[transition] %s: clip1=%.2fs clip2=%.2fs duration=%.2fs offset=%.2fs\n",
		style, dur1, dur2, trans, offset)

	// Video: trim both streams to their reconciled durations, then xfade.
	// Audio: fade the first out over the transition window, delay and fade
	// the second in at the same offset, then mix.
	filter := fmt.Sprintf(
		"[0:v]trim=0:%g,setpts=PTS-STARTPTS,fps=30[v0];"+
			"[1:v]trim=0:%g,setpts=PTS-STARTPTS,fps=30[v1];"+
			"[0:a]atrim=0:%g,asetpts=PTS-STARTPTS[a0];"+
			"[1:a]atrim=0:%g,asetpts=PTS-STARTPTS[a1];"+
			"[v0][v1]xfade=transition=%s:duration=%g:offset=%g[v];"+
			"[a0]afade=t=out:st=%g:d=%g[a0f];"+
			"[a1]adelay=%d|%d,afade=t=in:st=0:d=%g[a1f];"+
			"[a0f][a1f]amix=inputs=2:duration=longest:normalize=0[a]",
		dur1, dur2, dur1, dur2,
		style, trans, offset,
		offset, trans,
		delayMs, delayMs, trans)

	return t.run(ctx, "-y",
		"-i", first,
		"-i", second,
		"-filter_complex", filter,
		"-map", "[v]", "-map", "[a]",
		"-c:v", "libx264", "-preset", "fast",
		"-c:a", "aac", "-ar", "44100", "-ac", "2",
		"-vsync", "cfr", "-r", "30",
		out)
}
