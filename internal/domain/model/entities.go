package model

import "time"

// Persona is a synthetic user profile the completion service role-plays
// during a simulation.
type Persona struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Background     string    `json:"background"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Goal describes what a persona is trying to accomplish against the agent
// under test and how success is judged.
type Goal struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Objective       string    `json:"objective"`
	SuccessCriteria string    `json:"success_criteria"`
	InitialPrompt   string    `json:"initial_prompt"`
	MaxTurns        int       `json:"max_turns"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Organization provides optional real-world context for generated personas.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	FromReal    bool      `json:"created_from_real_company"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
