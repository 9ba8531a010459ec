package media

import (
	"context"
	"fmt"
	"time"
)

// TitleCard synthesizes a short intro clip: black background, fading title
// text, the current date underneath, and silent audio so it concatenates
// cleanly with real clips.
func (t *Transcoder) TitleCard(ctx context.Context, out, title string, duration float64, width, height int) error {
	dateStr := time.Now().Format("January 2, 2006")

	titleSize := height / 10
	if titleSize < 48 {
		titleSize = 48
	}
	dateSize := height / 24
	if dateSize < 24 {
		dateSize = 24
	}

	alpha := "if(lt(t,0.5),0,if(lt(t,1.5),(t-0.5),1))"

	filter := fmt.Sprintf(
		"[0:v]drawtext=text='%s':fontsize=%d:fontcolor=white:x=(w-text_w)/2:y=(h-text_h)/2-40:alpha='%s',"+
			"drawtext=text='%s':fontsize=%d:fontcolor=white@0.8:x=(w-text_w)/2:y=(h/2)+30:alpha='%s',"+
			"fade=t=in:st=0:d=0.5[v];"+
			"[1:a]atrim=0:%g,afade=t=out:st=%g:d=1[a]",
		EscapeText(title), titleSize, alpha,
		EscapeText(dateStr), dateSize, alpha,
		duration, duration-1)

	return t.run(ctx, "-y",
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=%dx%d:d=%g", width, height, duration),
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo",
		"-filter_complex", filter,
		"-map", "[v]", "-map", "[a]",
		"-c:v", "libx264", "-c:a", "aac",
		"-t", fmt.Sprintf("%g", duration),
		out)
}

// OutroCard synthesizes a closing clip with a message fading to black.
func (t *Transcoder) OutroCard(ctx context.Context, out, message string, duration float64, width, height int) error {
	textSize := height / 14
	if textSize < 36 {
		textSize = 36
	}

	filter := fmt.Sprintf(
		"[0:v]drawtext=text='%s':fontsize=%d:fontcolor=white:x=(w-text_w)/2:y=(h-text_h)/2:"+
			"alpha='if(lt(t,%g),1,1-(t-%g))',fade=t=out:st=%g:d=1[v];"+
			"[1:a]atrim=0:%g,afade=t=out:st=%g:d=1[a]",
		EscapeText(message), textSize, duration-1, duration-1, duration-1,
		duration, duration-1)

	return t.run(ctx, "-y",
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=%dx%d:d=%g", width, height, duration),
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo",
		"-filter_complex", filter,
		"-map", "[v]", "-map", "[a]",
		"-c:v", "libx264", "-c:a", "aac",
		"-t", fmt.Sprintf("%g", duration),
		out)
}

// ExtractSegment cuts [start, end) out of src, normalizes it to the overlay
// dimensions, resets timestamps to zero, and burns in the text overlay when
// enabled. Output is CFR 30fps H.264 with 44.1kHz stereo AAC so every clip
// concatenates with identical parameters.
func (t *Transcoder) ExtractSegment(ctx context.Context, src, out string, start, end float64, o OverlaySpec) error {
	duration := end - start
	if duration <= 0 {
		return fmt.Errorf("invalid segment window: start=%.2f end=%.2f", start, end)
	}

	return t.run(ctx, "-y",
		"-ss", fmt.Sprintf("%g", start),
		"-i", src,
		"-t", fmt.Sprintf("%g", duration),
		"-vf", segmentVideoFilter(o, duration)+",setpts=PTS-STARTPTS",
		"-af", "asetpts=PTS-STARTPTS",
		"-c:v", "libx264", "-preset", "fast",
		"-c:a", "aac", "-ar", "44100", "-ac", "2",
		"-r", "30",
		"-vsync", "cfr",
		"-async", "1",
		"-shortest",
		out)
}
