// Package voice produces the spoken commentary track: it writes short DJ
// lines for a mix plan, schedules them on the final timeline, and turns them
// into audio clips through a pluggable speech provider.
package voice

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/GiGurra/cmder"
)

// Clip is one rendered spoken line on disk.
type Clip struct {
	Path     string
	Duration float64
}

// Provider turns text into a spoken audio clip at outPath. Implementations
// may call a cloud service or a local synthesizer; the pipeline only needs
// the path and duration back.
type Provider interface {
	Speak(ctx context.Context, text, outPath string) (Clip, error)
}

// Prober measures the duration of a rendered clip. *media.Transcoder
// satisfies it.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// LocalProvider synthesizes speech with whatever TTS binary the host has,
// preferring macOS say and falling back to espeak.
type LocalProvider struct {
	Binary string
	Probe  Prober
}

// NewLocalProvider picks the first available local TTS binary.
func NewLocalProvider(probe Prober) (*LocalProvider, error) {
	for _, bin := range []string{"say", "espeak"} {
		if _, err := exec.LookPath(bin); err == nil {
			return &LocalProvider{Binary: bin, Probe: probe}, nil
		}
	}
	return nil, fmt.Errorf("no local TTS binary found (tried say, espeak)")
}

// Speak renders text to a wav file at outPath and measures it.
func (p *LocalProvider) Speak(ctx context.Context, text, outPath string) (Clip, error) {
	var args []string
	switch p.Binary {
	case "say":
		args = []string{"--data-format=LEF32@44100", "-o", outPath, text}
	default:
		args = []string{"-w", outPath, text}
	}

	res := cmder.New(append([]string{p.Binary}, args...)...).Run(ctx)
	if res.Err != nil {
		return Clip{}, fmt.Errorf("error synthesizing %q: %v", text, res.Err)
	}

	dur, err := p.Probe.Duration(ctx, outPath)
	if err != nil {
		return Clip{}, fmt.Errorf("probe voice clip %s: %w", filepath.Base(outPath), err)
	}
	return Clip{Path: outPath, Duration: dur}, nil
}
