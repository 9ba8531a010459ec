package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DecodeMono decodes up to maxSeconds of a media file to mono float32 PCM at
// the given sample rate and returns the samples as float64 for analysis.
// maxSeconds <= 0 decodes the whole file.
func (t *Transcoder) DecodeMono(ctx context.Context, path string, sampleRate int, maxSeconds float64) ([]float64, error) {
	tempDir, err := os.MkdirTemp("", "mixdeck-decode-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	rawPath := filepath.Join(tempDir, "audio.f32le")

	args := []string{"-y", "-i", path, "-vn",
		"-f", "f32le", "-acodec", "pcm_f32le",
		"-ac", "1", "-ar", fmt.Sprintf("%d", sampleRate)}
	if maxSeconds > 0 {
		args = append(args, "-t", fmt.Sprintf("%g", maxSeconds))
	}
	args = append(args, rawPath)

	if err := t.run(ctx, args...); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded audio: %v", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("decoded audio is empty: %s", filepath.Base(path))
	}

	samples := make([]float64, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples, nil
}
