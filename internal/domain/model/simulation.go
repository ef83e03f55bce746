package model

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

const (
	RolePersona = "persona"
	RoleAgent   = "agent"
)

// TurnMessage is one entry of a simulation trajectory. Reward is the score
// reported by the agent host for its own reply (-1, 0 or 1); it is recorded
// as received, never recomputed here.
type TurnMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Reward    *int      `json:"reward,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SimulationRun is the lifecycle record of one persona-vs-agent conversation.
// The trajectory is append-only and the record becomes immutable once the
// status leaves running.
type SimulationRun struct {
	ID           string        `json:"simulation_id"`
	PersonaID    string        `json:"persona_id"`
	GoalID       string        `json:"goal_id"`
	Status       RunStatus     `json:"status"`
	CurrentTurn  int           `json:"current_turn"`
	MaxTurns     int           `json:"max_turns"`
	Trajectory   []TurnMessage `json:"trajectory"`
	GoalAchieved bool          `json:"goal_achieved"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

func NewSimulationRun(id, personaID, goalID string, maxTurns int) *SimulationRun {
	return &SimulationRun{
		ID:         id,
		PersonaID:  personaID,
		GoalID:     goalID,
		Status:     RunStatusRunning,
		MaxTurns:   maxTurns,
		Trajectory: make([]TurnMessage, 0, 2*maxTurns),
		StartedAt:  time.Now().UTC(),
	}
}
