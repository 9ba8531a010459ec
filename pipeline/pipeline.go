package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"

	"mixdeck/config"
	"mixdeck/media"
	"mixdeck/mix"
	"mixdeck/util"
	"mixdeck/voice"
)

// Media is the transcoder surface the pipeline drives. *media.Transcoder
// satisfies it; tests substitute their own.
type Media interface {
	TitleCard(ctx context.Context, out, title string, duration float64, width, height int) error
	OutroCard(ctx context.Context, out, message string, duration float64, width, height int) error
	ExtractSegment(ctx context.Context, src, out string, start, end float64, o media.OverlaySpec) error
	TransitionJoin(ctx context.Context, first, second, out, style string, requested float64) error
	Concat(ctx context.Context, inputs []string, out string) error
	MixCommentary(ctx context.Context, video, out string, clips []media.VoiceClip, duckLevel, voiceBoost float64) error
	Duration(ctx context.Context, path string) (float64, error)
}

// Fetcher resolves a source id to a local media file. *media.Fetcher
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, sourceID string) (string, float64, error)
}

// Pipeline composes mix plans into videos. One Pipeline may run many jobs
// concurrently; each job gets its own temp directory and shares nothing but
// the read-through source cache behind Fetch.
type Pipeline struct {
	Media  Media
	Fetch  Fetcher
	Voice  voice.Provider // nil disables commentary
	Config config.Config
}

// Run executes one composition job to a terminal state. It never returns an
// error: callers observe failure exclusively through the job's snapshot.
// Intended to be launched on its own goroutine.
func (pl *Pipeline) Run(ctx context.Context, job *Job, plan mix.Plan, outputPath string) {
	cfg := pl.Config

	if len(plan.Entries) == 0 {
		job.fail("validate", fmt.Errorf("plan has no segments"))
		return
	}
	job.setSegment(0, len(plan.Entries))

	tempDir, err := os.MkdirTemp("", "mixdeck-job-")
	if err != nil {
		job.fail("setup", fmt.Errorf("failed to create working directory: %v", err))
		return
	}
	// Cleanup runs on every exit path: success, failure, and cancellation.
	defer os.RemoveAll(tempDir)

	if err := util.EnsureDir(filepath.Dir(outputPath)); err != nil {
		job.fail("setup", err)
		return
	}
	if err := util.EnsureFree(filepath.Dir(outputPath), cfg.MinFreeDiskBytes); err != nil {
		job.fail("resources", err)
		return
	}

	width, height := media.Resolution(cfg.VideoQuality)

	var clips []string
	introDur := 0.0

	// Stage 1: intro card. Non-fatal; a mix without an intro still ships.
	if checkCancel(ctx, job) {
		return
	}
	job.setStage(StatusProcessing, 5, "intro")
	if cfg.IntroDuration > 0 {
		intro := filepath.Join(tempDir, "intro.mp4")
		if err := pl.Media.TitleCard(ctx, intro, mixTitle(plan), cfg.IntroDuration, width, height); err != nil {
			job.warn(fmt.Sprintf("intro generation failed, continuing without: %v", err))
		} else {
			clips = append(clips, intro)
			introDur = cfg.IntroDuration
		}
	}

	// Stage 2: materialize each planned segment. A failed segment is skipped
	// as long as at least two survive.
	total := len(plan.Entries)
	var survivors []mix.Entry
	var segDurs []float64

	for i, entry := range plan.Entries {
		if checkCancel(ctx, job) {
			return
		}
		progress := 10 + float64(i)/float64(total)*70
		job.setSegment(i+1, total)

		job.setStage(StatusFetching, progress, fmt.Sprintf("fetching %s", entry.SourceID))
		src, _, err := pl.Fetch.Fetch(ctx, entry.SourceID)
		if err != nil {
			job.warn(fmt.Sprintf("skipping segment %d (%s): %v", i+1, entry.SourceID, err))
			continue
		}

		job.setStage(StatusProcessing, progress+4, fmt.Sprintf("cutting %s", entry.Label))
		out := filepath.Join(tempDir, fmt.Sprintf("segment_%03d.mp4", i))
		overlay := media.OverlaySpec{
			Title:    entry.Title,
			Artist:   entry.Artist,
			Language: entry.Language,
			Enabled:  cfg.TextOverlay,
			Width:    width,
			Height:   height,
		}
		if err := pl.Media.ExtractSegment(ctx, src, out, entry.Start, entry.End, overlay); err != nil {
			job.warn(fmt.Sprintf("skipping segment %d (%s): %v", i+1, entry.SourceID, err))
			continue
		}

		clips = append(clips, out)
		survivors = append(survivors, entry)
		segDurs = append(segDurs, entry.Duration)
	}

	if len(survivors) == 0 {
		job.fail("segments", fmt.Errorf("no segments could be materialized"))
		return
	}
	if len(survivors) < 2 && total >= 2 {
		job.fail("segments", fmt.Errorf("only %d of %d segments survived, need at least 2", len(survivors), total))
		return
	}

	// Stage 3: outro card, same non-fatal pattern as the intro.
	if checkCancel(ctx, job) {
		return
	}
	job.setStage(StatusProcessing, 82, "outro")
	outroDur := 0.0
	if cfg.OutroDuration > 0 {
		outro := filepath.Join(tempDir, "outro.mp4")
		if err := pl.Media.OutroCard(ctx, outro, "Thanks for listening", cfg.OutroDuration, width, height); err != nil {
			job.warn(fmt.Sprintf("outro generation failed, continuing without: %v", err))
		} else {
			clips = append(clips, outro)
			outroDur = cfg.OutroDuration
		}
	}

	// Stage 4: join everything left to right with transitions.
	job.setStage(StatusConcatenating, 84, "transitions")
	joined, err := pl.joinAll(ctx, job, tempDir, clips)
	if err != nil {
		job.fail("transitions", err)
		return
	}

	// Stage 5: optional commentary overlay. Non-fatal; on any failure the
	// pre-commentary artifact ships instead.
	final := joined
	if cfg.Commentary && pl.Voice != nil {
		if checkCancel(ctx, job) {
			return
		}
		job.setStage(StatusEncoding, 88, "commentary")

		timing := voice.Timing{
			IntroDuration: introDur,
			OutroDuration: outroDur,
			Crossfade:     cfg.TransitionDuration,
			SegmentDurs:   segDurs,
		}
		survivorPlan := mix.Plan{Entries: survivors}
		mixed, err := pl.addCommentary(ctx, tempDir, survivorPlan, timing, joined, seedFrom(job.ID))
		if err != nil {
			job.warn(fmt.Sprintf("commentary failed, shipping without: %v", err))
		} else {
			final = mixed
		}
	}

	// Stage 6: finalize.
	if checkCancel(ctx, job) {
		return
	}
	job.setStage(StatusEncoding, 98, "finalize")
	if err := moveFile(final, outputPath); err != nil {
		job.fail("finalize", err)
		return
	}

	duration, err := pl.Media.Duration(ctx, outputPath)
	if err != nil {
		duration = 0
	}
	job.complete(outputPath, util.Round2(duration), util.FileSize(outputPath))
}

// joinStrategy is one way of attaching the next clip; strategies are tried
// in order and the first success wins.
type joinStrategy struct {
	name string
	join func(ctx context.Context, first, second, out string) error
}

// joinAll folds the clip list left to right. Each seam first tries a styled
// transition, then a plain re-encoded concat; only when both fail is the job
// lost.
func (pl *Pipeline) joinAll(ctx context.Context, job *Job, tempDir string, clips []string) (string, error) {
	if len(clips) == 1 {
		return clips[0], nil
	}

	acc := clips[0]
	for i, next := range clips[1:] {
		if checkCancelSilent(ctx, job) {
			job.markCancelled()
			return "", fmt.Errorf("cancelled")
		}

		style := media.StyleFor(pl.Config.TransitionStyle, i)
		out := filepath.Join(tempDir, fmt.Sprintf("joined_%03d.mp4", i))

		strategies := []joinStrategy{
			{"transition:" + style, func(ctx context.Context, first, second, out string) error {
				return pl.Media.TransitionJoin(ctx, first, second, out, style, pl.Config.TransitionDuration)
			}},
			{"concat", func(ctx context.Context, first, second, out string) error {
				return pl.Media.Concat(ctx, []string{first, second}, out)
			}},
		}

		var joinErr error
		for s, strategy := range strategies {
			if joinErr = strategy.join(ctx, acc, next, out); joinErr == nil {
				break
			}
			if s < len(strategies)-1 {
				job.warn(fmt.Sprintf("join %d via %s failed, trying %s: %v", i+1, strategy.name, strategies[s+1].name, joinErr))
			}
		}
		if joinErr != nil {
			return "", fmt.Errorf("join %d failed with every strategy: %v", i+1, joinErr)
		}
		acc = out
	}
	return acc, nil
}

// addCommentary writes the DJ script, renders each cue, and mixes the clips
// over the joined video with ducking.
func (pl *Pipeline) addCommentary(ctx context.Context, tempDir string, plan mix.Plan, timing voice.Timing, video string, seed int64) (string, error) {
	cues := voice.Schedule(voice.Script(plan, voice.Frequency(pl.Config.CommentaryFrequency), seed), timing)
	if len(cues) == 0 {
		return "", fmt.Errorf("no commentary cues generated")
	}

	var clips []media.VoiceClip
	for i, cue := range cues {
		out := filepath.Join(tempDir, fmt.Sprintf("voice_%03d.wav", i))
		clip, err := pl.Voice.Speak(ctx, cue.Text, out)
		if err != nil {
			continue
		}
		clips = append(clips, media.VoiceClip{Path: clip.Path, At: cue.At, Duration: clip.Duration})
	}
	if len(clips) == 0 {
		return "", fmt.Errorf("no voice clips could be rendered")
	}

	mixed := filepath.Join(tempDir, "with_commentary.mp4")
	if err := pl.Media.MixCommentary(ctx, video, mixed, clips, pl.Config.DuckLevel, pl.Config.VoiceBoost); err != nil {
		return "", err
	}
	return mixed, nil
}

// mixTitle names the intro card after the opening track.
func mixTitle(plan mix.Plan) string {
	if len(plan.Entries) > 0 && plan.Entries[0].Title != "" {
		return fmt.Sprintf("Mix Session · opening with %s", plan.Entries[0].Title)
	}
	return "Mix Session"
}

// checkCancel marks the job cancelled when cancellation was requested.
func checkCancel(ctx context.Context, job *Job) bool {
	if checkCancelSilent(ctx, job) {
		job.markCancelled()
		return true
	}
	return false
}

func checkCancelSilent(ctx context.Context, job *Job) bool {
	return job.Cancelled() || ctx.Err() != nil
}

func seedFrom(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}

// moveFile renames, falling back to copy+remove when the export directory
// sits on a different filesystem than the temp directory.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy to %s: %v", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %v", dst, err)
	}
	os.Remove(src)
	return nil
}
