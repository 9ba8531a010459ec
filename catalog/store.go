// Package catalog persists track metadata and analysis results so a track is
// only analyzed once. The sequencing and pipeline code never touches the
// database directly; it is handed entries and returns plans.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mixdeck/analysis"
)

// Track is song-level metadata for one cached source.
type Track struct {
	SourceID string
	Title    string
	Artist   string
	Language string
	BPM      float64
	Energy   float64 // 0-100
	Duration float64
	Analyzed time.Time
}

// Store is a sqlite-backed catalog. Safe for concurrent use; database/sql
// serializes access to the single connection pool.
type Store struct {
	db *sql.DB
}

// Open creates or opens the catalog database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS tracks (
		source_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		bpm REAL NOT NULL DEFAULT 0,
		energy REAL NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		analyzed_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS segments (
		source_id TEXT NOT NULL,
		label TEXT NOT NULL,
		start_time REAL NOT NULL,
		end_time REAL NOT NULL,
		energy REAL NOT NULL,
		is_primary INTEGER NOT NULL,
		PRIMARY KEY (source_id, label)
	);
	CREATE INDEX IF NOT EXISTS idx_segments_source ON segments(source_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTrack upserts a track's metadata and replaces its detected segments.
func (s *Store) SaveTrack(track Track, segments []analysis.Segment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO tracks (source_id, title, artist, language, bpm, energy, duration, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		track.SourceID, track.Title, track.Artist, track.Language,
		track.BPM, track.Energy, track.Duration, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save track %s: %v", track.SourceID, err)
	}

	if _, err := tx.Exec("DELETE FROM segments WHERE source_id = ?", track.SourceID); err != nil {
		return fmt.Errorf("failed to clear segments for %s: %v", track.SourceID, err)
	}
	for _, seg := range segments {
		_, err := tx.Exec(`
			INSERT INTO segments (source_id, label, start_time, end_time, energy, is_primary)
			VALUES (?, ?, ?, ?, ?, ?)`,
			track.SourceID, seg.Label, seg.Start, seg.End, seg.Energy, seg.Primary)
		if err != nil {
			return fmt.Errorf("failed to save segment %s/%s: %v", track.SourceID, seg.Label, err)
		}
	}

	return tx.Commit()
}

// Track looks up one track by source id.
func (s *Store) Track(sourceID string) (Track, bool) {
	var t Track
	var analyzed int64

	err := s.db.QueryRow(`
		SELECT source_id, title, artist, language, bpm, energy, duration, analyzed_at
		FROM tracks WHERE source_id = ?`, sourceID).
		Scan(&t.SourceID, &t.Title, &t.Artist, &t.Language, &t.BPM, &t.Energy, &t.Duration, &analyzed)
	if err != nil {
		return Track{}, false
	}

	t.Analyzed = time.Unix(analyzed, 0)
	return t, true
}

// Segments returns a track's stored segments in timeline order.
func (s *Store) Segments(sourceID string) ([]analysis.Segment, error) {
	rows, err := s.db.Query(`
		SELECT label, start_time, end_time, energy, is_primary
		FROM segments WHERE source_id = ? ORDER BY start_time`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments for %s: %v", sourceID, err)
	}
	defer rows.Close()

	var segments []analysis.Segment
	for rows.Next() {
		var seg analysis.Segment
		if err := rows.Scan(&seg.Label, &seg.Start, &seg.End, &seg.Energy, &seg.Primary); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %v", err)
		}
		seg.Duration = seg.End - seg.Start
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// Tracks lists all analyzed tracks, most recent first.
func (s *Store) Tracks() ([]Track, error) {
	rows, err := s.db.Query(`
		SELECT source_id, title, artist, language, bpm, energy, duration, analyzed_at
		FROM tracks ORDER BY analyzed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %v", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		var analyzed int64
		if err := rows.Scan(&t.SourceID, &t.Title, &t.Artist, &t.Language, &t.BPM, &t.Energy, &t.Duration, &analyzed); err != nil {
			return nil, fmt.Errorf("failed to scan track: %v", err)
		}
		t.Analyzed = time.Unix(analyzed, 0)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
