package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
)

// CRUD for the stored entities. Generation is the usual way records get
// here; these endpoints cover hand-authored fixtures and cleanup.

type personaRequest struct {
	Name           string   `json:"name"`
	Background     string   `json:"background"`
	OrganizationID string   `json:"organization_id"`
	Tags           []string `json:"tags"`
}

func (s *Server) handlePersonaList(w http.ResponseWriter, r *http.Request) {
	personas, err := s.personas.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"personas": personas})
}

func (s *Server) handlePersonaCreate(w http.ResponseWriter, r *http.Request) {
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Background) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and background are required"})
		return
	}
	now := time.Now().UTC()
	p := &model.Persona{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Background:     req.Background,
		OrganizationID: req.OrganizationID,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.personas.Save(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePersonaGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.personas.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePersonaUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := s.personas.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Background != "" {
		p.Background = req.Background
	}
	p.OrganizationID = req.OrganizationID
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.personas.Save(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePersonaDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.personas.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type goalRequest struct {
	Name            string `json:"name"`
	Objective       string `json:"objective"`
	SuccessCriteria string `json:"success_criteria"`
	InitialPrompt   string `json:"initial_prompt"`
	MaxTurns        int    `json:"max_turns"`
}

func (s *Server) handleGoalList(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleGoalCreate(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	for _, v := range []string{req.Name, req.Objective, req.SuccessCriteria, req.InitialPrompt} {
		if strings.TrimSpace(v) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, objective, success_criteria and initial_prompt are required"})
			return
		}
	}
	if req.MaxTurns <= 0 {
		req.MaxTurns = 10
	}
	now := time.Now().UTC()
	g := &model.Goal{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Objective:       req.Objective,
		SuccessCriteria: req.SuccessCriteria,
		InitialPrompt:   req.InitialPrompt,
		MaxTurns:        req.MaxTurns,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.goals.Save(r.Context(), g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGoalGet(w http.ResponseWriter, r *http.Request) {
	g, err := s.goals.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGoalUpdate(w http.ResponseWriter, r *http.Request) {
	g, err := s.goals.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name != "" {
		g.Name = req.Name
	}
	if req.Objective != "" {
		g.Objective = req.Objective
	}
	if req.SuccessCriteria != "" {
		g.SuccessCriteria = req.SuccessCriteria
	}
	if req.InitialPrompt != "" {
		g.InitialPrompt = req.InitialPrompt
	}
	if req.MaxTurns > 0 {
		g.MaxTurns = req.MaxTurns
	}
	g.UpdatedAt = time.Now().UTC()
	if err := s.goals.Save(r.Context(), g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGoalDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type orgRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Industry    string `json:"industry"`
	FromReal    bool   `json:"from_real"`
}

func (s *Server) handleOrgList(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.orgs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"organizations": orgs})
}

func (s *Server) handleOrgCreate(w http.ResponseWriter, r *http.Request) {
	var req orgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	now := time.Now().UTC()
	o := &model.Organization{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Industry:    req.Industry,
		FromReal:    req.FromReal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orgs.Save(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleOrgGet(w http.ResponseWriter, r *http.Request) {
	o, err := s.orgs.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOrgUpdate(w http.ResponseWriter, r *http.Request) {
	o, err := s.orgs.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req orgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name != "" {
		o.Name = req.Name
	}
	o.Description = req.Description
	o.Type = req.Type
	o.Industry = req.Industry
	o.FromReal = req.FromReal
	o.UpdatedAt = time.Now().UTC()
	if err := s.orgs.Save(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOrgDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.orgs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
