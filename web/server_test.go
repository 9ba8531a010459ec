package web

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mixdeck/config"
	"mixdeck/media"
	"mixdeck/mix"
	"mixdeck/pipeline"
	"mixdeck/voice"
)

// okMedia fakes every transcoder call by writing an empty output file.
type okMedia struct{}

func write(path string) error { return os.WriteFile(path, []byte("x"), 0644) }

func (okMedia) TitleCard(ctx context.Context, out, title string, duration float64, w, h int) error {
	return write(out)
}
func (okMedia) OutroCard(ctx context.Context, out, message string, duration float64, w, h int) error {
	return write(out)
}
func (okMedia) ExtractSegment(ctx context.Context, src, out string, start, end float64, o media.OverlaySpec) error {
	return write(out)
}
func (okMedia) TransitionJoin(ctx context.Context, first, second, out, style string, requested float64) error {
	return write(out)
}
func (okMedia) Concat(ctx context.Context, inputs []string, out string) error {
	return write(out)
}
func (okMedia) MixCommentary(ctx context.Context, video, out string, clips []media.VoiceClip, duckLevel, voiceBoost float64) error {
	return write(out)
}
func (okMedia) Duration(ctx context.Context, path string) (float64, error) { return 42, nil }

// commentaryMedia counts mixdowns on top of okMedia's stubs.
type commentaryMedia struct {
	okMedia
	mixes int
}

func (m *commentaryMedia) MixCommentary(ctx context.Context, video, out string, clips []media.VoiceClip, duckLevel, voiceBoost float64) error {
	m.mixes++
	return write(out)
}

type okVoice struct{}

func (okVoice) Speak(ctx context.Context, text, out string) (voice.Clip, error) {
	if err := write(out); err != nil {
		return voice.Clip{}, err
	}
	return voice.Clip{Path: out, Duration: 1.5}, nil
}

type okFetch struct{ dir string }

func (f okFetch) Fetch(ctx context.Context, sourceID string) (string, float64, error) {
	path := filepath.Join(f.dir, sourceID+".mp4")
	return path, 180, write(path)
}

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.MinFreeDiskBytes = 0

	return &Server{
		Registry: pipeline.NewRegistry(),
		Pipeline: &pipeline.Pipeline{
			Media:  okMedia{},
			Fetch:  okFetch{dir: t.TempDir()},
			Config: cfg,
		},
		Queue:     NewExportQueue(2),
		ExportDir: t.TempDir(),
		Params:    mix.Params{Strategy: "balanced"},
	}
}

func testEntriesJSON() string {
	return `{"entries": [
		{"source_id": "a", "start_time": 10, "end_time": 70, "duration": 60, "title": "A", "bpm": 120, "energy": 60, "language": "en"},
		{"source_id": "b", "start_time": 20, "end_time": 80, "duration": 60, "title": "B", "bpm": 124, "energy": 65, "language": "es"}
	]}`
}

// pollJob polls /api/jobs/{id} until the job reaches a terminal state.
func pollJob(t *testing.T, s *Server, jobID string) pipeline.Progress {
	t.Helper()

	var snap pipeline.Progress
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := httptest.NewRecorder()
		s.handleJob(rec, httptest.NewRequest("GET", "/api/jobs/"+jobID, nil))
		if rec.Code != 200 {
			t.Fatalf("poll failed: %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("bad snapshot: %v", err)
		}
		if snap.Status.Terminal() {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state: %+v", jobID, snap)
	return snap
}

func TestExportRejectsBadRequests(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.handleExport(rec, httptest.NewRequest("GET", "/api/export", nil))
	if rec.Code != 405 {
		t.Errorf("GET should be rejected, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleExport(rec, httptest.NewRequest("POST", "/api/export", strings.NewReader(`{"entries": []}`)))
	if rec.Code != 400 {
		t.Errorf("empty entries should be rejected, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handleExport(rec, httptest.NewRequest("POST", "/api/export", strings.NewReader("not json")))
	if rec.Code != 400 {
		t.Errorf("invalid JSON should be rejected, got %d", rec.Code)
	}
}

func TestExportRunsToCompletion(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.handleExport(rec, httptest.NewRequest("POST", "/api/export", strings.NewReader(testEntriesJSON())))
	if rec.Code != 200 {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.JobID == "" {
		t.Fatalf("bad export response: %s", rec.Body.String())
	}

	snap := pollJob(t, s, resp.JobID)
	if snap.Status != pipeline.StatusComplete {
		t.Fatalf("expected complete, got %s (%s)", snap.Status, snap.Error)
	}
	if snap.OutputPath == "" {
		t.Error("completed job has no output path")
	}
}

func TestExportCommentaryFlag(t *testing.T) {
	s := testServer(t)
	fm := &commentaryMedia{}
	s.Pipeline.Media = fm
	s.Pipeline.Voice = okVoice{}

	payload := strings.TrimSuffix(testEntriesJSON(), "}") + `, "commentary": true}`
	rec := httptest.NewRecorder()
	s.handleExport(rec, httptest.NewRequest("POST", "/api/export", strings.NewReader(payload)))
	if rec.Code != 200 {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad export response: %s", rec.Body.String())
	}

	snap := pollJob(t, s, resp.JobID)
	if snap.Status != pipeline.StatusComplete {
		t.Fatalf("expected complete, got %s (%s)", snap.Status, snap.Error)
	}
	if fm.mixes != 1 {
		t.Errorf("commentary request should trigger one mixdown, got %d", fm.mixes)
	}
	if s.Pipeline.Config.Commentary {
		t.Error("per-request commentary leaked into the shared config")
	}
}

func TestJobNotFound(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.handleJob(rec, httptest.NewRequest("GET", "/api/jobs/nope", nil))
	if rec.Code != 404 {
		t.Errorf("unknown job should 404, got %d", rec.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	s := testServer(t)

	job := pipeline.NewJob()
	s.Registry.Add(job)

	rec := httptest.NewRecorder()
	s.handleJob(rec, httptest.NewRequest("POST", "/api/jobs/"+job.ID+"/cancel", nil))
	if rec.Code != 200 {
		t.Fatalf("cancel failed: %d", rec.Code)
	}
	if !job.Cancelled() {
		t.Error("cancel endpoint did not set the flag")
	}
}

func TestExportQueueLimitsConcurrency(t *testing.T) {
	q := NewExportQueue(1)

	running := make(chan struct{})
	release := make(chan struct{})
	var order []int
	var mu sync.Mutex

	q.Submit(func() {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		close(running)
		<-release
	})
	<-running

	done := make(chan struct{})
	q.Submit(func() {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		close(done)
	})

	// The second job must wait for the first slot to free up.
	select {
	case <-done:
		t.Fatal("second job ran while the first held the only slot")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("jobs ran out of order: %v", order)
	}
}
