// Package web exposes the export engine over HTTP: submit a set of segments,
// poll the resulting job, cancel it. Job state is the only thing a caller
// ever reads back; the pipeline itself stays behind the registry.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"mixdeck/mix"
	"mixdeck/pipeline"
)

// Server wires the HTTP surface to a pipeline and its job registry.
type Server struct {
	Registry  *pipeline.Registry
	Pipeline  *pipeline.Pipeline
	Queue     *ExportQueue
	ExportDir string
	Params    mix.Params
}

// SetupRoutes configures HTTP routes for the export API.
func (s *Server) SetupRoutes() {
	http.HandleFunc("/api/export", s.handleExport)
	http.HandleFunc("/api/jobs", s.handleJobs)
	http.HandleFunc("/api/jobs/", s.handleJob)
}

// Start registers routes and blocks serving on the given port.
func (s *Server) Start(port int) error {
	s.SetupRoutes()
	fmt.Printf("Export API listening on port %d\n", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Entries             []mix.Entry `json:"entries"`
		Strategy            string      `json:"strategy"`
		Curve               string      `json:"curve"`
		Seed                int64       `json:"seed"`
		OutputName          string      `json:"output_name"`
		Commentary          *bool       `json:"commentary"`
		CommentaryFrequency string      `json:"commentary_frequency"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.Entries) == 0 {
		http.Error(w, "At least one entry is required", http.StatusBadRequest)
		return
	}

	params := s.Params
	if req.Strategy != "" {
		params.Strategy = req.Strategy
	}
	if req.Curve != "" {
		params.Curve = req.Curve
	}
	if req.Seed != 0 {
		params.Seed = req.Seed
	}

	plan := mix.Sequence(req.Entries, params)

	job := pipeline.NewJob()
	s.Registry.Add(job)

	name := req.OutputName
	if name == "" {
		name = "mix_" + job.ID + ".mp4"
	}
	outputPath := filepath.Join(s.ExportDir, filepath.Base(name))

	// Commentary is a per-request choice, so each job runs a pipeline copy
	// with its own config.
	pl := *s.Pipeline
	if req.Commentary != nil {
		pl.Config.Commentary = *req.Commentary
	}
	if req.CommentaryFrequency != "" {
		pl.Config.CommentaryFrequency = req.CommentaryFrequency
	}

	s.Queue.Submit(func() {
		pl.Run(context.Background(), job, plan, outputPath)
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":        job.ID,
		"status":        pipeline.StatusPending,
		"quality_score": plan.Quality,
		"entries":       len(plan.Entries),
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Registry.Snapshots())
}

// handleJob serves /api/jobs/{id} for status and /api/jobs/{id}/cancel.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	id, action, _ := strings.Cut(rest, "/")

	job, ok := s.Registry.Get(id)
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(job.Snapshot())

	case action == "cancel" && r.Method == http.MethodPost:
		job.Cancel()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"job_id": job.ID,
			"status": "cancelling",
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
