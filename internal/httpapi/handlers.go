package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vidpoint/vidpoint/internal/jobs"
	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/pkg/log"
)

type processRequest struct {
	URL string `json:"url"`
}

type jobResponse struct {
	VideoID   string `json:"video_id"`
	Status    string `json:"status"`
	Step      string `json:"step,omitempty"`
	Error     string `json:"error,omitempty"`
	ResultRef string `json:"result_ref,omitempty"`
}

func toJobResponse(job *jobs.ProcessingJob) jobResponse {
	return jobResponse{
		VideoID:   job.VideoID.String(),
		Status:    wireStatus(job.Status),
		Step:      job.Step,
		Error:     job.Error,
		ResultRef: job.ResultRef,
	}
}

// wireStatus maps the internal status to the polling protocol's value.
// Failed jobs are reported as "error" on the wire.
func wireStatus(status jobs.Status) string {
	if status == jobs.StatusFailed {
		return "error"
	}
	return string(status)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := source.Resolve(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported or malformed video URL")
		return
	}

	allowed, err := s.gate.CanProcess(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "billing check failed")
		return
	}
	if !allowed {
		writeError(w, http.StatusPaymentRequired, "processing quota exhausted")
		return
	}

	job, created, err := s.tracker.GetOrCreate(r.Context(), id, req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not register job")
		return
	}
	if !created {
		// Existing job record doubles as the result cache.
		writeJSON(w, http.StatusOK, toJobResponse(job))
		return
	}

	if !s.queue.Submit(id, req.URL) {
		// The fresh record must not stay pending with no queued task
		// behind it, or the VideoID would be stuck forever.
		if err := s.tracker.Fail(r.Context(), id, "processing queue is full"); err != nil {
			log.Error("failing rejected job %s: %v", id, err)
		}
		writeError(w, http.StatusServiceUnavailable, "processing queue is full")
		return
	}
	if err := s.gate.RecordUsage(r.Context(), id); err != nil {
		log.Warn("recording usage for %s: %v", id, err)
	}
	writeJSON(w, http.StatusAccepted, toJobResponse(job))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// /api/status/{video_id}
	raw := strings.TrimPrefix(r.URL.Path, "/api/status/")
	raw = strings.TrimSuffix(raw, "/")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing video id")
		return
	}

	job, err := s.tracker.Get(r.Context(), source.VideoID(raw))
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			writeError(w, http.StatusNotFound, "unknown video id")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load job")
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
