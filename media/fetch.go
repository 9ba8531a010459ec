package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/GiGurra/cmder"
	"mixdeck/util"
)

// PopularityWindow is one sample of a source's replay-intensity curve, as
// reported by the hosting platform. Score is normalized to [0,1].
type PopularityWindow struct {
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`
	Score float64 `json:"value"`
}

// Fetcher downloads source media by id into a read-through cache. Lookups
// are safe concurrently; cache writes go to a temp directory first and are
// renamed into place so a half-written entry is never seen as complete.
type Fetcher struct {
	DataDir string
	YtDlp   string
	Probe   *Transcoder

	mu       sync.Mutex
	inflight map[string]*sync.WaitGroup
}

// NewFetcher creates a fetcher caching into dataDir.
func NewFetcher(dataDir string, probe *Transcoder) *Fetcher {
	return &Fetcher{
		DataDir:  dataDir,
		YtDlp:    "yt-dlp",
		Probe:    probe,
		inflight: make(map[string]*sync.WaitGroup),
	}
}

func (f *Fetcher) cachePath(sourceID string) string {
	return filepath.Join(f.DataDir, sourceID+".mp4")
}

func (f *Fetcher) infoPath(sourceID string) string {
	return filepath.Join(f.DataDir, sourceID+".info.json")
}

// Fetch returns a local path and nominal duration for the given source id,
// downloading on a cache miss. Concurrent fetches of the same id share one
// download.
func (f *Fetcher) Fetch(ctx context.Context, sourceID string) (string, float64, error) {
	path := f.cachePath(sourceID)

	for {
		if util.FileExists(path) {
			dur, err := f.Probe.Duration(ctx, path)
			if err != nil {
				return "", 0, fmt.Errorf("probe cached %s: %w", sourceID, err)
			}
			return path, dur, nil
		}

		f.mu.Lock()
		if wg, busy := f.inflight[sourceID]; busy {
			f.mu.Unlock()
			wg.Wait()
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		f.inflight[sourceID] = wg
		f.mu.Unlock()

		err := f.download(ctx, sourceID)

		f.mu.Lock()
		delete(f.inflight, sourceID)
		f.mu.Unlock()
		wg.Done()

		if err != nil {
			return "", 0, err
		}
	}
}

// download runs yt-dlp into a private temp directory, then renames the
// results into the cache.
func (f *Fetcher) download(ctx context.Context, sourceID string) error {
	if err := util.EnsureDir(f.DataDir); err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp(f.DataDir, ".fetch-")
	if err != nil {
		return fmt.Errorf("failed to create fetch dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	fmt.Printf("Downloading source %s...\n", sourceID)

	res := cmder.New(f.YtDlp,
		"-o", filepath.Join(tempDir, "%(id)s.%(ext)s"),
		"-f", "bv*[vcodec^=avc1][ext=mp4]+ba[acodec^=mp4a][ext=m4a]/best[ext=mp4][vcodec^=avc1]",
		"--merge-output-format", "mp4",
		"--write-info-json",
		"--no-warnings",
		"https://www.youtube.com/watch?v="+sourceID,
	).Run(ctx)
	if res.Err != nil {
		return fmt.Errorf("error downloading source %s: %v: %s", sourceID, res.Err, tail(res.StdErr, 300))
	}

	downloaded := filepath.Join(tempDir, sourceID+".mp4")
	if !util.FileExists(downloaded) {
		return fmt.Errorf("download finished but %s.mp4 not found", sourceID)
	}

	// Info JSON first: if the media rename lands, the curve should be there.
	info := filepath.Join(tempDir, sourceID+".info.json")
	if util.FileExists(info) {
		os.Rename(info, f.infoPath(sourceID))
	}
	if err := os.Rename(downloaded, f.cachePath(sourceID)); err != nil {
		return fmt.Errorf("failed to move %s into cache: %v", sourceID, err)
	}

	fmt.Printf("Cached source %s\n", sourceID)
	return nil
}

// Popularity returns the replay-intensity curve captured alongside a cached
// source, if the platform provided one. Absence is normal and callers fall
// back to pure audio-energy selection.
func (f *Fetcher) Popularity(sourceID string) ([]PopularityWindow, bool) {
	raw, err := os.ReadFile(f.infoPath(sourceID))
	if err != nil {
		return nil, false
	}

	var info struct {
		Heatmap []PopularityWindow `json:"heatmap"`
	}
	if err := json.Unmarshal(raw, &info); err != nil || len(info.Heatmap) == 0 {
		return nil, false
	}
	return info.Heatmap, true
}

// CacheStats reports the number of cached media files and their total size.
func (f *Fetcher) CacheStats() (count int, bytes int64) {
	entries, err := os.ReadDir(f.DataDir)
	if err != nil {
		return 0, 0
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp4") {
			continue
		}
		count++
		bytes += util.FileSize(filepath.Join(f.DataDir, e.Name()))
	}
	return count, bytes
}

// ClearCache removes all cached media and metadata files.
func (f *Fetcher) ClearCache() error {
	entries, err := os.ReadDir(f.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache dir: %v", err)
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".mp4") || strings.HasSuffix(name, ".info.json") {
			os.Remove(filepath.Join(f.DataDir, name))
		}
	}
	return nil
}
