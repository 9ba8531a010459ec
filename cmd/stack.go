package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"mixdeck/analysis"
	"mixdeck/catalog"
	"mixdeck/media"
	"mixdeck/mix"
)

// stack is the wiring every command shares: transcoder, source cache, and
// the track catalog.
type stack struct {
	trans   *media.Transcoder
	fetcher *media.Fetcher
	store   *catalog.Store
}

func newStack() (*stack, error) {
	store, err := catalog.Open(filepath.Join(cfg.DataDir, "mixdeck.db"))
	if err != nil {
		return nil, err
	}

	trans := media.NewTranscoder()
	return &stack{
		trans:   trans,
		fetcher: media.NewFetcher(cfg.DataDir, trans),
		store:   store,
	}, nil
}

func (s *stack) Close() {
	s.store.Close()
}

func analysisOptions() analysis.Options {
	o := analysis.DefaultOptions()
	o.MinLength = cfg.MinSegmentSeconds
	o.MaxLength = cfg.MaxSegmentSeconds
	o.MaxSegments = cfg.MaxSegmentsPerSong
	o.MinGap = cfg.MinSegmentGap
	return o
}

// analyzeTrack fetches a source, runs the energy analysis, folds in the
// platform popularity curve when one exists, and persists the result. When
// the audio cannot be decoded it falls back to a chorus-position guess
// instead of failing the track.
func (s *stack) analyzeTrack(ctx context.Context, sourceID, title, artist, language string) (catalog.Track, []analysis.Segment, error) {
	path, duration, err := s.fetcher.Fetch(ctx, sourceID)
	if err != nil {
		return catalog.Track{}, nil, err
	}
	if title == "" {
		title = sourceID
	}

	opts := analysisOptions()

	track := catalog.Track{
		SourceID: sourceID,
		Title:    title,
		Artist:   artist,
		Language: language,
		Duration: duration,
	}

	samples, err := s.trans.DecodeMono(ctx, path, opts.SampleRate, 0)
	if err != nil {
		fmt.Printf("Warning: could not decode %s, guessing a chorus window: %v\n", sourceID, err)
		target := analysis.TargetDuration(50, duration)
		start, end := analysis.FallbackWindow(duration, target)
		track.BPM = analysis.DefaultBPM
		track.Energy = 50
		segments := []analysis.Segment{{
			Start: start, End: end, Duration: end - start,
			Energy: 50, Primary: true, Label: "segment_1",
		}}
		return track, segments, s.store.SaveTrack(track, segments)
	}

	result, err := analysis.Analyze(samples, opts)
	if err != nil {
		return catalog.Track{}, nil, fmt.Errorf("analyze %s: %w", sourceID, err)
	}

	if heatmap, ok := s.fetcher.Popularity(sourceID); ok {
		pop := make([]analysis.PopularitySample, len(heatmap))
		for i, h := range heatmap {
			pop[i] = analysis.PopularitySample{Start: h.Start, End: h.End, Score: h.Score}
		}
		result = analysis.Refine(result, opts, pop, cfg.MinAlignedSegment)
	}

	track.BPM = result.BPM
	track.Energy = result.OverallEnergy
	return track, result.Segments, s.store.SaveTrack(track, result.Segments)
}

// entriesFor turns stored tracks into sequencer entries. With primaryOnly
// each track contributes its single best segment.
func (s *stack) entriesFor(sourceIDs []string, primaryOnly bool) ([]mix.Entry, error) {
	var entries []mix.Entry
	for _, id := range sourceIDs {
		track, ok := s.store.Track(id)
		if !ok {
			return nil, fmt.Errorf("track %s is not in the catalog, run analyze first", id)
		}
		segments, err := s.store.Segments(id)
		if err != nil {
			return nil, err
		}
		if len(segments) == 0 {
			return nil, fmt.Errorf("track %s has no segments", id)
		}

		for _, seg := range segments {
			if primaryOnly && !seg.Primary {
				continue
			}
			entries = append(entries, mix.Entry{
				SourceID: track.SourceID,
				Start:    seg.Start,
				End:      seg.End,
				Duration: seg.Duration,
				Label:    seg.Label,
				Title:    track.Title,
				Artist:   track.Artist,
				Language: track.Language,
				BPM:      track.BPM,
				Energy:   seg.Energy,
			})
		}
	}
	return entries, nil
}
