package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// Duration returns the container duration of a media file in seconds.
func (t *Transcoder) Duration(ctx context.Context, path string) (float64, error) {
	out, err := t.probe(ctx,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(out), 64)
}

// StreamDurations returns the video and audio stream durations separately.
// Encoded clips frequently disagree between the two; callers reconcile them
// before computing transition offsets. A missing stream reports 0.
func (t *Transcoder) StreamDurations(ctx context.Context, path string) (video, audio float64, err error) {
	out, err := t.probe(ctx,
		"-v", "error",
		"-show_entries", "stream=codec_type,duration",
		"-of", "json",
		path)
	if err != nil {
		return 0, 0, err
	}

	var data struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Duration  string `json:"duration"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return 0, 0, err
	}

	for _, s := range data.Streams {
		d, _ := strconv.ParseFloat(s.Duration, 64)
		switch s.CodecType {
		case "video":
			video = d
		case "audio":
			audio = d
		}
	}
	return video, audio, nil
}

// Dimensions returns the width and height of the first video stream,
// defaulting to 1280x720 when probing fails.
func (t *Transcoder) Dimensions(ctx context.Context, path string) (int, int) {
	out, err := t.probe(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		path)
	if err != nil {
		return 1280, 720
	}
	parts := strings.Split(strings.TrimSpace(out), ",")
	if len(parts) != 2 {
		return 1280, 720
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 1280, 720
	}
	return w, h
}

// Resolution maps a quality label to output dimensions.
func Resolution(quality string) (int, int) {
	switch quality {
	case "480p":
		return 854, 480
	case "1080p":
		return 1920, 1080
	default:
		return 1280, 720
	}
}
