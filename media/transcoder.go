package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/GiGurra/cmder"
)

// Transcoder wraps the external ffmpeg/ffprobe binaries. Every method is a
// blocking call; cancellation comes from the context.
type Transcoder struct {
	FFmpeg  string
	FFprobe string
}

// NewTranscoder resolves ffmpeg and ffprobe from PATH.
func NewTranscoder() *Transcoder {
	return &Transcoder{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
}

// run executes ffmpeg with the given arguments and returns an error carrying
// the tail of stderr on failure.
func (t *Transcoder) run(ctx context.Context, args ...string) error {
	res := cmder.New(append([]string{t.FFmpeg}, args...)...).Run(ctx)
	if res.Err != nil {
		return fmt.Errorf("ffmpeg failed: %v: %s", res.Err, tail(res.StdErr, 300))
	}
	return nil
}

// probe executes ffprobe and returns its stdout.
func (t *Transcoder) probe(ctx context.Context, args ...string) (string, error) {
	res := cmder.New(append([]string{t.FFprobe}, args...)...).Run(ctx)
	if res.Err != nil {
		return "", fmt.Errorf("ffprobe failed: %v: %s", res.Err, tail(res.StdErr, 300))
	}
	return res.StdOut, nil
}

// tail returns the last n characters of s with surrounding whitespace removed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
