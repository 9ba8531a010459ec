package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Concat joins clips back to back with a full re-encode. Inputs whose video
// and audio stream durations have drifted apart are first trimmed to the
// shorter stream so the output stays in sync. This is the fallback join when
// a transition fails, and the join of last resort generally.
func (t *Transcoder) Concat(ctx context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	fmt.Printf("[concat] joining %d clips\n", len(inputs))

	tempDir, err := os.MkdirTemp("", "mixdeck-concat-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	normalized := make([]string, 0, len(inputs))
	for i, input := range inputs {
		video, audio, err := t.StreamDurations(ctx, input)
		if err != nil || math.Abs(video-audio) <= 0.1 || video <= 0 || audio <= 0 {
			normalized = append(normalized, input)
			continue
		}

		fmt.Printf("[concat] fixing A/V drift in %s (v=%.2fs, a=%.2fs)\n", filepath.Base(input), video, audio)
		fixed := filepath.Join(tempDir, fmt.Sprintf("fixed_%d.mp4", i))
		err = t.run(ctx, "-y", "-i", input,
			"-t", fmt.Sprintf("%g", reconcile(video, audio)),
			"-c:v", "libx264", "-preset", "fast",
			"-c:a", "aac", "-ar", "44100", "-ac", "2",
			"-vsync", "cfr", "-r", "30",
			fixed)
		if err != nil {
			normalized = append(normalized, input)
			continue
		}
		normalized = append(normalized, fixed)
	}

	listPath := filepath.Join(tempDir, "concat.txt")
	list := ""
	for _, path := range normalized {
		list += fmt.Sprintf("file '%s'\n", path)
	}
	if err := os.WriteFile(listPath, []byte(list), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %v", err)
	}

	return t.run(ctx, "-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:v", "libx264", "-preset", "fast",
		"-c:a", "aac", "-ar", "44100", "-ac", "2",
		"-vsync", "cfr", "-r", "30",
		out)
}
