// File: internal/usecase/simulation_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

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
var _ SimulationUseCase = (*simulationUC)(nil)

type RunRequest struct {
	PersonaID       string `json:"persona_id"`
	GoalID          string `json:"goal_id"`
	MaxTurns        int    `json:"max_turns"`
	Model           string `json:"model"`
	ReasoningEffort string `json:"reasoning_effort"`
}

// RunStatusView is the compact polling shape for one run.
type RunStatusView struct {
	Status       model.RunStatus `json:"status"`
	CurrentTurn  int             `json:"current_turn"`
	MaxTurns     int             `json:"max_turns"`
	GoalAchieved bool            `json:"goal_achieved"`
	Error        string          `json:"error,omitempty"`
}

// SimulationUseCase starts, observes and cancels simulation runs. Run
// returns as soon as the remote thread exists and the loop is queued.
type SimulationUseCase interface {
	Run(ctx context.Context, req RunRequest) (string, error)
	Get(id string) (model.SimulationRun, error)
	Status(id string) (RunStatusView, error)
	List() []model.SimulationRun
	Stop(id string) (bool, error)
}

type simulationUC struct {
	runs     *registry.SimulationRegistry
	personas repository.PersonaRepository
	goals    repository.GoalRepository
	agent    adapter.AgentHostAdapter
	ai       adapter.CompletionAdapter
	pool     *worker.Pool
	simCfg   config.SimulationConfig
	aiCfg    config.AIConfig
	agentCfg config.AgentHostConfig
	log      *zerolog.Logger
}

func NewSimulationUseCase(
	runs *registry.SimulationRegistry,
	personas repository.PersonaRepository,
	goals repository.GoalRepository,
	agent adapter.AgentHostAdapter,
	ai adapter.CompletionAdapter,
	pool *worker.Pool,
	simCfg config.SimulationConfig,
	aiCfg config.AIConfig,
	agentCfg config.AgentHostConfig,
	log *zerolog.Logger,
) *simulationUC {
	return &simulationUC{
		runs: runs, personas: personas, goals: goals,
		agent: agent, ai: ai, pool: pool,
		simCfg: simCfg, aiCfg: aiCfg, agentCfg: agentCfg, log: log,
	}
}

func (u *simulationUC) Run(ctx context.Context, req RunRequest) (string, error) {
	persona, err := u.personas.FindByID(ctx, req.PersonaID)
	if err != nil {
		return "", fmt.Errorf("persona %s: %w", req.PersonaID, err)
	}
	goal, err := u.goals.FindByID(ctx, req.GoalID)
	if err != nil {
		return "", fmt.Errorf("goal %s: %w", req.GoalID, err)
	}

	maxTurns := req.MaxTurns
	if maxTurns <= 0 {
		maxTurns = goal.MaxTurns
	}
	if maxTurns <= 0 {
		maxTurns = u.simCfg.DefaultMaxTurns
	}
	if maxTurns > u.simCfg.MaxTurnsCap {
		return "", fmt.Errorf("%w: max_turns above limit %d", domain.ErrInvalidArgument, u.simCfg.MaxTurnsCap)
	}

	threadID, err := u.agent.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("create agent thread: %w", err)
	}
	if err := u.runs.Create(threadID, persona.ID, goal.ID, maxTurns); err != nil {
		return "", err
	}

	modelName := req.Model
	if modelName == "" {
		modelName = u.aiCfg.DefaultModel
	}
	if req.ReasoningEffort != "" {
		u.log.Debug().Str("simulation_id", threadID).Str("reasoning_effort", req.ReasoningEffort).Msg("reasoning effort requested")
	}

	if err := u.pool.Submit(func(ctx context.Context) error {
		u.runLoop(ctx, threadID, persona, goal, modelName, maxTurns)
		return nil
	}); err != nil {
		_ = u.runs.SetTerminal(threadID, model.RunStatusFailed, false, err.Error())
		return "", err
	}

	u.log.Info().Str("simulation_id", threadID).Str("persona", persona.Name).
		Str("goal", goal.Name).Int("max_turns", maxTurns).Msg("simulation started")
	return threadID, nil
}

// runLoop drives one simulation to a terminal state. Every exit path writes
// exactly one terminal record; the deferred recover covers panics.
func (u *simulationUC) runLoop(ctx context.Context, id string, persona *model.Persona, goal *model.Goal, modelName string, maxTurns int) {
	ctx = logging.WithSimID(ctx, id)
	log := *logging.With(ctx, u.log)
	defer logging.TraceDuration(&log, "SimulationUC.runLoop")()

	defer func() {
		if r := recover(); r != nil {
			_ = u.runs.SetTerminal(id, model.RunStatusFailed, false, fmt.Sprintf("panic: %v", r))
			metrics.IncSimulationRun("failed")
			log.Error().Interface("panic", r).Msg("simulation loop panicked")
		}
	}()

	fail := func(outcome, msg string) {
		_ = u.runs.SetTerminal(id, model.RunStatusFailed, false, msg)
		metrics.IncSimulationRun(outcome)
		log.Warn().Str("outcome", outcome).Str("error", msg).Msg("simulation failed")
	}

	var history []model.TurnMessage
	outbound := goal.InitialPrompt
	turn := 0

	for {
		// Cooperative cancellation, checked only at the turn boundary so a
		// record is never left half-written.
		if u.runs.ShouldStop(id) {
			fail("cancelled", domain.ErrCancelled.Error())
			return
		}

		personaMsg := model.TurnMessage{Role: model.RolePersona, Content: outbound, Timestamp: time.Now().UTC()}
		if err := u.runs.AppendMessages(id, personaMsg); err != nil {
			fail("failed", fmt.Sprintf("record persona turn: %v", err))
			return
		}
		history = append(history, personaMsg)

		actx, cancel := context.WithTimeout(ctx, u.agentCfg.CallTimeout)
		callStart := time.Now()
		reply, err := u.agent.Send(actx, id, outbound)
		cancel()
		metrics.ObserveAgentCall(int(time.Since(callStart)/time.Millisecond), err == nil)
		if err != nil {
			fail("failed", fmt.Sprintf("agent host: %v", err))
			return
		}

		agentMsg := model.TurnMessage{Role: model.RoleAgent, Content: reply.Content, Reward: reply.Reward, Timestamp: time.Now().UTC()}
		if err := u.runs.AppendMessages(id, agentMsg); err != nil {
			fail("failed", fmt.Sprintf("record agent turn: %v", err))
			return
		}
		history = append(history, agentMsg)

		// A stop signal wins over the turn limit and ends the run before
		// another persona turn is consumed.
		if reply.Stop {
			achieved := reply.Reward != nil && *reply.Reward > 0
			_ = u.runs.SetTerminal(id, model.RunStatusCompleted, achieved, "")
			metrics.IncSimulationRun(outcomeForStop(achieved))
			metrics.ObserveSimulationTurns(turn)
			log.Info().Bool("goal_achieved", achieved).Int("turns", turn).Msg("simulation completed on stop signal")
			return
		}

		turn++
		if err := u.runs.SetTurn(id, turn); err != nil {
			fail("failed", fmt.Sprintf("record turn count: %v", err))
			return
		}
		if turn >= maxTurns {
			// Turn-limit exhaustion is a normal terminal outcome.
			_ = u.runs.SetTerminal(id, model.RunStatusCompleted, false, "")
			metrics.IncSimulationRun("turn_limit")
			metrics.ObserveSimulationTurns(turn)
			log.Info().Int("turns", turn).Msg("simulation completed at turn limit")
			return
		}

		pctx, cancel := context.WithTimeout(ctx, u.aiCfg.CallTimeout)
		callStart = time.Now()
		next, err := u.ai.Chat(pctx, modelName, personaChatMessages(persona, goal, history))
		cancel()
		metrics.ObserveCompletionCall(modelName, int(time.Since(callStart)/time.Millisecond), err == nil)
		if err != nil {
			fail("failed", fmt.Sprintf("persona completion: %v", err))
			return
		}
		outbound = next
	}
}

func (u *simulationUC) Get(id string) (model.SimulationRun, error) {
	return u.runs.Get(id)
}

func (u *simulationUC) Status(id string) (RunStatusView, error) {
	run, err := u.runs.Get(id)
	if err != nil {
		return RunStatusView{}, err
	}
	return RunStatusView{
		Status:       run.Status,
		CurrentTurn:  run.CurrentTurn,
		MaxTurns:     run.MaxTurns,
		GoalAchieved: run.GoalAchieved,
		Error:        run.Error,
	}, nil
}

func (u *simulationUC) List() []model.SimulationRun {
	return u.runs.List()
}

func (u *simulationUC) Stop(id string) (bool, error) {
	applied, err := u.runs.RequestStop(id)
	if err == nil && applied {
		u.log.Info().Str("simulation_id", id).Msg("cancellation requested")
	}
	return applied, err
}

func outcomeForStop(achieved bool) string {
	if achieved {
		return "goal_achieved"
	}
	return "stopped"
}
