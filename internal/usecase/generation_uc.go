// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/config"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/adapter"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/repository"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/logging"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/metrics"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/worker"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/registry"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

type PersonaGenRequest struct {
	Description    string `json:"description"`
	Count          int    `json:"count"`
	UseEnrichment  bool   `json:"use_enrichment"`
	OrganizationID string `json:"organization_id"`
	Model          string `json:"model"`
}

type GoalGenRequest struct {
	Description string `json:"description"`
	Model       string `json:"model"`
}

// GenerationUseCase turns generation requests into populated jobs. Submit*
// return immediately with a job id; the work runs on the pool and reports
// into the job registry.
type GenerationUseCase interface {
	SubmitPersona(ctx context.Context, req PersonaGenRequest) (string, error)
	SubmitGoal(ctx context.Context, req GoalGenRequest) (string, error)
	JobStatus(id string) (model.GenerationJob, error)
}

type generationUC struct {
	jobs     *registry.JobRegistry
	ai       adapter.CompletionAdapter
	search   adapter.SearchAdapter // nil when enrichment is not configured
	personas repository.PersonaRepository
	goals    repository.GoalRepository
	orgs     repository.OrganizationRepository
	pool     *worker.Pool
	cfg      config.GenerationConfig
	aiCfg    config.AIConfig
	enrich   config.EnrichmentConfig
	log      *zerolog.Logger
}

func NewGenerationUseCase(
	jobs *registry.JobRegistry,
	ai adapter.CompletionAdapter,
	search adapter.SearchAdapter,
	personas repository.PersonaRepository,
	goals repository.GoalRepository,
	orgs repository.OrganizationRepository,
	pool *worker.Pool,
	cfg config.GenerationConfig,
	aiCfg config.AIConfig,
	enrich config.EnrichmentConfig,
	log *zerolog.Logger,
) *generationUC {
	return &generationUC{
		jobs: jobs, ai: ai, search: search,
		personas: personas, goals: goals, orgs: orgs,
		pool: pool, cfg: cfg, aiCfg: aiCfg, enrich: enrich, log: log,
	}
}

func (u *generationUC) SubmitPersona(ctx context.Context, req PersonaGenRequest) (string, error) {
	if strings.TrimSpace(req.Description) == "" {
		return "", domain.ErrInvalidArgument
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > u.cfg.MaxCount {
		return "", fmt.Errorf("%w: count above limit %d", domain.ErrInvalidArgument, u.cfg.MaxCount)
	}

	id := u.jobs.Create()
	if err := u.pool.Submit(func(ctx context.Context) error {
		u.runPersonaJob(ctx, id, req)
		return nil
	}); err != nil {
		_ = u.jobs.Fail(id, err.Error(), 0)
		return "", err
	}
	return id, nil
}

func (u *generationUC) SubmitGoal(ctx context.Context, req GoalGenRequest) (string, error) {
	if strings.TrimSpace(req.Description) == "" {
		return "", domain.ErrInvalidArgument
	}

	id := u.jobs.Create()
	if err := u.pool.Submit(func(ctx context.Context) error {
		u.runGoalJob(ctx, id, req)
		return nil
	}); err != nil {
		_ = u.jobs.Fail(id, err.Error(), 0)
		return "", err
	}
	return id, nil
}

func (u *generationUC) JobStatus(id string) (model.GenerationJob, error) {
	return u.jobs.Get(id)
}

// runPersonaJob executes one persona generation end to end. Whatever path it
// takes out, the deferred finalizer guarantees exactly one terminal write.
func (u *generationUC) runPersonaJob(ctx context.Context, jobID string, req PersonaGenRequest) {
	start := time.Now()
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.With(ctx, u.log).With().Str("entity", "persona").Logger()
	defer logging.TraceDuration(&log, "GenerationUC.runPersonaJob")()

	var jobErr error
	defer func() {
		if r := recover(); r != nil {
			jobErr = fmt.Errorf("panic: %v", r)
		}
		if jobErr != nil {
			elapsed := time.Since(start).Seconds()
			_ = u.jobs.Fail(jobID, jobErr.Error(), elapsed)
			metrics.IncGenerationJob("persona", "failed")
			metrics.ObserveGenerationSeconds("persona", elapsed)
			log.Error().Err(jobErr).Msg("persona generation failed")
		}
	}()

	if jobErr = u.jobs.MarkRunning(jobID, "preparing request", 10); jobErr != nil {
		return
	}

	var snippets []adapter.Snippet
	if req.UseEnrichment {
		// Enrichment was asked for explicitly, so a broken search provider
		// is a hard failure rather than a silent downgrade.
		if u.search == nil {
			jobErr = errors.New("enrichment requested but no search provider is configured")
			return
		}
		query := req.Description
		_ = u.jobs.SetProgress(jobID, fmt.Sprintf("searching real-world context: %q", query), 30)
		sctx, cancel := context.WithTimeout(ctx, u.enrich.CallTimeout)
		snippets, jobErr = u.search.Search(sctx, query, u.enrich.ResultCount)
		cancel()
		if jobErr != nil {
			jobErr = fmt.Errorf("enrichment search: %w", jobErr)
			return
		}
	}

	var org *model.Organization
	if req.OrganizationID != "" {
		if org, jobErr = u.orgs.FindByID(ctx, req.OrganizationID); jobErr != nil {
			jobErr = fmt.Errorf("organization %s: %w", req.OrganizationID, jobErr)
			return
		}
	}

	msgs := personaPrompt(req, snippets, org)
	u.checkPromptBudget(ctx, req.Model, msgs, &log)

	_ = u.jobs.SetProgress(jobID, "calling completion service", 40)
	cctx, cancel := context.WithTimeout(ctx, u.aiCfg.CallTimeout)
	raw, err := u.ai.ChatStructured(cctx, u.modelOrDefault(req.Model), msgs, "persona_batch", personaSchema(req.Count))
	cancel()
	if err != nil {
		jobErr = fmt.Errorf("completion service: %w", err)
		return
	}
	_ = u.jobs.SetProgress(jobID, "validating generated personas", 90)

	var parsed struct {
		Personas []struct {
			Name       string `json:"name"`
			Background string `json:"background"`
		} `json:"personas"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		jobErr = fmt.Errorf("%w: malformed completion payload: %v", domain.ErrValidation, err)
		return
	}
	if len(parsed.Personas) != req.Count {
		jobErr = fmt.Errorf("%w: expected %d personas, got %d", domain.ErrValidation, req.Count, len(parsed.Personas))
		return
	}

	now := time.Now().UTC()
	out := make([]*model.Persona, 0, req.Count)
	for i, p := range parsed.Personas {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Background) == "" {
			jobErr = fmt.Errorf("%w: persona %d is missing name or background", domain.ErrValidation, i)
			return
		}
		out = append(out, &model.Persona{
			ID:             uuid.NewString(),
			Name:           p.Name,
			Background:     p.Background,
			OrganizationID: req.OrganizationID,
			Tags:           []string{"generated"},
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	_ = u.jobs.SetProgress(jobID, "saving personas", 95)
	for _, p := range out {
		if err := u.personas.Save(ctx, p); err != nil {
			jobErr = fmt.Errorf("save persona: %w", err)
			return
		}
	}

	payload, err := json.Marshal(struct {
		Personas []*model.Persona `json:"personas"`
	}{Personas: out})
	if err != nil {
		jobErr = fmt.Errorf("encode result: %w", err)
		return
	}

	elapsed := time.Since(start).Seconds()
	if jobErr = u.jobs.Complete(jobID, payload, elapsed); jobErr != nil {
		return
	}
	metrics.IncGenerationJob("persona", "completed")
	metrics.ObserveGenerationSeconds("persona", elapsed)
	log.Info().Int("count", len(out)).Float64("seconds", elapsed).Msg("persona generation completed")
}

func (u *generationUC) runGoalJob(ctx context.Context, jobID string, req GoalGenRequest) {
	start := time.Now()
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.With(ctx, u.log).With().Str("entity", "goal").Logger()
	defer logging.TraceDuration(&log, "GenerationUC.runGoalJob")()

	var jobErr error
	defer func() {
		if r := recover(); r != nil {
			jobErr = fmt.Errorf("panic: %v", r)
		}
		if jobErr != nil {
			elapsed := time.Since(start).Seconds()
			_ = u.jobs.Fail(jobID, jobErr.Error(), elapsed)
			metrics.IncGenerationJob("goal", "failed")
			metrics.ObserveGenerationSeconds("goal", elapsed)
			log.Error().Err(jobErr).Msg("goal generation failed")
		}
	}()

	if jobErr = u.jobs.MarkRunning(jobID, "preparing request", 10); jobErr != nil {
		return
	}

	msgs := goalPrompt(req)
	u.checkPromptBudget(ctx, req.Model, msgs, &log)

	_ = u.jobs.SetProgress(jobID, "calling completion service", 40)
	cctx, cancel := context.WithTimeout(ctx, u.aiCfg.CallTimeout)
	raw, err := u.ai.ChatStructured(cctx, u.modelOrDefault(req.Model), msgs, "goal", goalSchema())
	cancel()
	if err != nil {
		jobErr = fmt.Errorf("completion service: %w", err)
		return
	}
	_ = u.jobs.SetProgress(jobID, "validating generated goal", 90)

	var parsed struct {
		Name            string `json:"name"`
		Objective       string `json:"objective"`
		SuccessCriteria string `json:"success_criteria"`
		InitialPrompt   string `json:"initial_prompt"`
		MaxTurns        int    `json:"max_turns"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		jobErr = fmt.Errorf("%w: malformed completion payload: %v", domain.ErrValidation, err)
		return
	}
	for field, v := range map[string]string{
		"name":             parsed.Name,
		"objective":        parsed.Objective,
		"success_criteria": parsed.SuccessCriteria,
		"initial_prompt":   parsed.InitialPrompt,
	} {
		if strings.TrimSpace(v) == "" {
			jobErr = fmt.Errorf("%w: missing required field %q", domain.ErrValidation, field)
			return
		}
	}
	if parsed.MaxTurns <= 0 {
		parsed.MaxTurns = 10
	}

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:              uuid.NewString(),
		Name:            parsed.Name,
		Objective:       parsed.Objective,
		SuccessCriteria: parsed.SuccessCriteria,
		InitialPrompt:   parsed.InitialPrompt,
		MaxTurns:        parsed.MaxTurns,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_ = u.jobs.SetProgress(jobID, "saving goal", 95)
	if err := u.goals.Save(ctx, goal); err != nil {
		jobErr = fmt.Errorf("save goal: %w", err)
		return
	}

	payload, err := json.Marshal(struct {
		Goal *model.Goal `json:"goal"`
	}{Goal: goal})
	if err != nil {
		jobErr = fmt.Errorf("encode result: %w", err)
		return
	}

	elapsed := time.Since(start).Seconds()
	if jobErr = u.jobs.Complete(jobID, payload, elapsed); jobErr != nil {
		return
	}
	metrics.IncGenerationJob("goal", "completed")
	metrics.ObserveGenerationSeconds("goal", elapsed)
	log.Info().Str("goal", goal.Name).Float64("seconds", elapsed).Msg("goal generation completed")
}

func (u *generationUC) modelOrDefault(m string) string {
	if m != "" {
		return m
	}
	return u.aiCfg.DefaultModel
}

// checkPromptBudget warns when a composed prompt grows past the configured
// token cap. Counting is best-effort; a counting error is not a job error.
func (u *generationUC) checkPromptBudget(ctx context.Context, model string, msgs []adapter.Message, log *zerolog.Logger) {
	n, err := u.ai.CountTokens(ctx, u.modelOrDefault(model), msgs)
	if err != nil {
		return
	}
	if n > u.cfg.PromptTokenCap {
		log.Warn().Int("tokens", n).Int("cap", u.cfg.PromptTokenCap).Msg("prompt exceeds token budget")
	}
}
