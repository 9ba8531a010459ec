package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every tunable the engine reads. Build it once with Default or
// Load and pass it down explicitly; nothing in the engine reads the
// environment on its own.
type Config struct {
	DataDir   string // source media cache
	ExportDir string // finished mixes
	Port      int    // status server

	// Analyzer
	MinSegmentSeconds  float64 // shortest acceptable cut
	MaxSegmentSeconds  float64 // longest acceptable cut
	MaxSegmentsPerSong int
	MinSegmentGap      float64 // seconds between cuts in the same track
	MinAlignedSegment  float64 // below this, beat/phrase alignment is abandoned

	// Sequencer
	Strategy        string // tempo_smooth, language_variety, energy_curve, balanced
	EnergyCurve     string // peak_middle, ascending, descending, wave
	MaxSameLanguage int

	// Pipeline
	VideoQuality       string  // 480p, 720p, 1080p
	TransitionStyle    string  // named style or "random" for round-robin
	TransitionDuration float64 // seconds, clamped per pair at join time
	IntroDuration      float64
	OutroDuration      float64
	TextOverlay        bool
	MinFreeDiskBytes   uint64 // export refuses to start below this

	// Commentary
	Commentary          bool
	CommentaryFrequency string  // minimal, moderate, frequent
	DuckLevel           float64 // music volume under a voice clip (0-1)
	VoiceBoost          float64 // multiplier on voice clip volume
}

// Default returns the engine defaults used when no environment is present.
func Default() Config {
	return Config{
		DataDir:   "./data",
		ExportDir: "./exports",
		Port:      3009,

		MinSegmentSeconds:  45,
		MaxSegmentSeconds:  90,
		MaxSegmentsPerSong: 3,
		MinSegmentGap:      30,
		MinAlignedSegment:  40,

		Strategy:        "balanced",
		EnergyCurve:     "peak_middle",
		MaxSameLanguage: 2,

		VideoQuality:       "720p",
		TransitionStyle:    "random",
		TransitionDuration: 3.5,
		IntroDuration:      4.0,
		OutroDuration:      3.0,
		TextOverlay:        true,
		MinFreeDiskBytes:   2 << 30,

		Commentary:          false,
		CommentaryFrequency: "moderate",
		DuckLevel:           0.2,
		VoiceBoost:          2.5,
	}
}

// Load reads .env (if present) and applies MIXDECK_* environment overrides on
// top of the defaults. Invalid numeric values fall back to the default.
func Load() Config {
	godotenv.Load()

	cfg := Default()
	cfg.DataDir = envOrDefault("MIXDECK_DATA_DIR", cfg.DataDir)
	cfg.ExportDir = envOrDefault("MIXDECK_EXPORT_DIR", cfg.ExportDir)
	cfg.Port = envInt("MIXDECK_PORT", cfg.Port)

	cfg.MinSegmentSeconds = envFloat("MIXDECK_MIN_SEGMENT", cfg.MinSegmentSeconds)
	cfg.MaxSegmentSeconds = envFloat("MIXDECK_MAX_SEGMENT", cfg.MaxSegmentSeconds)
	cfg.MaxSegmentsPerSong = envInt("MIXDECK_MAX_SEGMENTS", cfg.MaxSegmentsPerSong)
	cfg.MinSegmentGap = envFloat("MIXDECK_MIN_GAP", cfg.MinSegmentGap)
	cfg.MinAlignedSegment = envFloat("MIXDECK_MIN_ALIGNED", cfg.MinAlignedSegment)

	cfg.Strategy = envOrDefault("MIXDECK_STRATEGY", cfg.Strategy)
	cfg.EnergyCurve = envOrDefault("MIXDECK_ENERGY_CURVE", cfg.EnergyCurve)
	cfg.MaxSameLanguage = envInt("MIXDECK_MAX_SAME_LANGUAGE", cfg.MaxSameLanguage)

	cfg.VideoQuality = envOrDefault("MIXDECK_QUALITY", cfg.VideoQuality)
	cfg.TransitionStyle = envOrDefault("MIXDECK_TRANSITION", cfg.TransitionStyle)
	cfg.TransitionDuration = envFloat("MIXDECK_TRANSITION_SECONDS", cfg.TransitionDuration)
	cfg.Commentary = envBool("MIXDECK_COMMENTARY", cfg.Commentary)
	cfg.CommentaryFrequency = envOrDefault("MIXDECK_DJ_FREQUENCY", cfg.CommentaryFrequency)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if abs, err := filepath.Abs(cfg.ExportDir); err == nil {
		cfg.ExportDir = abs
	}
	return cfg
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := envOrDefault(key, "")
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	val := envOrDefault(key, "")
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func envFloat(key string, fallback float64) float64 {
	val := envOrDefault(key, "")
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}
