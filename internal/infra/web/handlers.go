package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/logging"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/usecase"
)

// streamPollInterval controls how often the SSE endpoint re-reads the job
// registry. Snapshots are cheap, so it can be tight.
const streamPollInterval = 250 * time.Millisecond

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// ---- generation ----

func (s *Server) handleGeneratePersona(w http.ResponseWriter, r *http.Request) {
	var req usecase.PersonaGenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := s.genUC.SubmitPersona(r.Context(), req)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("persona generation rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id, "status": "pending"})
}

func (s *Server) handleGenerateGoal(w http.ResponseWriter, r *http.Request) {
	var req usecase.GoalGenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := s.genUC.SubmitGoal(r.Context(), req)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("goal generation rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id, "status": "pending"})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.genUC.JobStatus(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleJobStream pushes job snapshots as server-sent events until the job
// is terminal or the client goes away. The terminal snapshot is always the
// last event.
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	job, err := s.genUC.JobStatus(id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(v any) {
		b, err := json.Marshal(v)
		if err != nil {
			return
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(b)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}

	send(job)
	if job.Status.Terminal() {
		return
	}

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	lastProgress := job.Progress
	lastStatus := job.Status
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			job, err := s.genUC.JobStatus(id)
			if err != nil {
				// purged mid-stream; nothing more to say
				return
			}
			if job.Progress != lastProgress || job.Status != lastStatus {
				send(job)
				lastProgress = job.Progress
				lastStatus = job.Status
			}
			if job.Status.Terminal() {
				return
			}
		}
	}
}

// ---- simulations ----

func (s *Server) handleSimulationRun(w http.ResponseWriter, r *http.Request) {
	var req usecase.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := s.simUC.Run(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"simulation_id": id, "status": "running"})
}

func (s *Server) handleSimulationList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"simulations": s.simUC.List()})
}

func (s *Server) handleSimulationGet(w http.ResponseWriter, r *http.Request) {
	run, err := s.simUC.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleSimulationStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.simUC.Status(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSimulationStop(w http.ResponseWriter, r *http.Request) {
	applied, err := s.simUC.Stop(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": applied})
}
