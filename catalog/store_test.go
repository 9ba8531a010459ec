package catalog

import (
	"path/filepath"
	"testing"

	"mixdeck/analysis"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadTrack(t *testing.T) {
	store := openTestStore(t)

	track := Track{
		SourceID: "abc123",
		Title:    "Test Song",
		Artist:   "Test Artist",
		Language: "es",
		BPM:      128,
		Energy:   73.5,
		Duration: 215.4,
	}
	segments := []analysis.Segment{
		{Start: 30, End: 90, Duration: 60, Energy: 81.2, Primary: true, Label: "segment_1"},
		{Start: 140, End: 200, Duration: 60, Energy: 64.8, Label: "segment_2"},
	}

	if err := store.SaveTrack(track, segments); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok := store.Track("abc123")
	if !ok {
		t.Fatal("saved track not found")
	}
	if got.Title != track.Title || got.BPM != track.BPM || got.Language != track.Language {
		t.Errorf("track round-trip mismatch: %+v", got)
	}
	if got.Analyzed.IsZero() {
		t.Error("analyzed timestamp not set")
	}

	gotSegs, err := store.Segments("abc123")
	if err != nil {
		t.Fatalf("segments query failed: %v", err)
	}
	if len(gotSegs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(gotSegs))
	}
	if !gotSegs[0].Primary || gotSegs[1].Primary {
		t.Errorf("primary flag lost: %+v", gotSegs)
	}
	if gotSegs[0].Start != 30 || gotSegs[1].Start != 140 {
		t.Errorf("segments out of timeline order: %+v", gotSegs)
	}
}

func TestSaveTrackReplacesSegments(t *testing.T) {
	store := openTestStore(t)

	track := Track{SourceID: "xyz", Title: "Song"}
	first := []analysis.Segment{
		{Start: 10, End: 70, Duration: 60, Primary: true, Label: "segment_1"},
		{Start: 120, End: 170, Duration: 50, Label: "segment_2"},
	}
	if err := store.SaveTrack(track, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second := []analysis.Segment{
		{Start: 40, End: 100, Duration: 60, Primary: true, Label: "segment_1"},
	}
	if err := store.SaveTrack(track, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	segs, err := store.Segments("xyz")
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 || segs[0].Start != 40 {
		t.Errorf("re-analysis should replace segments, got %+v", segs)
	}
}

func TestTrackNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, ok := store.Track("missing"); ok {
		t.Error("lookup of a missing track should report not found")
	}
}

func TestTracksList(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.SaveTrack(Track{SourceID: id, Title: id}, nil); err != nil {
			t.Fatal(err)
		}
	}

	tracks, err := store.Tracks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 3 {
		t.Errorf("expected 3 tracks, got %d", len(tracks))
	}
}
