package model

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// GenerationJob tracks one asynchronous generation request. The record is
// owned by the worker that runs the job; pollers only ever see copies.
type GenerationJob struct {
	ID          string          `json:"id"`
	Status      JobStatus       `json:"status"`
	Stage       string          `json:"stage"`
	Progress    int             `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	// GenerationSeconds is wall time from submission to the terminal write.
	GenerationSeconds float64 `json:"generation_time_seconds,omitempty"`
}

func NewGenerationJob(id string) *GenerationJob {
	return &GenerationJob{
		ID:        id,
		Status:    JobStatusPending,
		Stage:     "queued",
		Progress:  0,
		CreatedAt: time.Now().UTC(),
	}
}
