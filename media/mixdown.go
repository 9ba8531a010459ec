package media

import (
	"context"
	"fmt"
	"strings"
)

// VoiceClip is a spoken clip mixed into the master audio at a fixed offset
// on the final timeline.
type VoiceClip struct {
	Path     string
	At       float64 // seconds from the start of the final video
	Duration float64
}

// duckExpression builds the time-varying music volume: duck to duckLevel
// while any voice clip is playing, full volume otherwise.
func duckExpression(clips []VoiceClip, duckLevel float64) string {
	conds := make([]string, len(clips))
	for i, c := range clips {
		conds[i] = fmt.Sprintf("between(t,%g,%g)", c.At, c.At+c.Duration)
	}
	return fmt.Sprintf("if(%s,%g,1.0)", strings.Join(conds, "+"), duckLevel)
}

// MixCommentary overlays spoken clips onto the video's audio track, ducking
// the music underneath each clip and boosting the voice. The mix uses
// duration=first so the output audio never outruns the video stream.
func (t *Transcoder) MixCommentary(ctx context.Context, video, out string, clips []VoiceClip, duckLevel, voiceBoost float64) error {
	if len(clips) == 0 {
		return fmt.Errorf("no voice clips to mix")
	}

	var filter strings.Builder
	fmt.Fprintf(&filter, "[0:a]volume='%s':eval=frame[music]", duckExpression(clips, duckLevel))

	labels := "[music]"
	for i, clip := range clips {
		delayMs := int(clip.At * 1000)
		fmt.Fprintf(&filter, ";[%d:a]adelay=%d|%d,volume=%g[voice%d]",
			i+1, delayMs, delayMs, voiceBoost, i)
		labels += fmt.Sprintf("[voice%d]", i)
	}
	fmt.Fprintf(&filter, ";%samix=inputs=%d:duration=first:dropout_transition=0:normalize=0[aout]",
		labels, len(clips)+1)

	args := []string{"-y", "-i", video}
	for _, clip := range clips {
		args = append(args, "-i", clip.Path)
	}
	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "0:v", "-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac", "-ar", "44100", "-ac", "2",
		out)

	return t.run(ctx, args...)
}
