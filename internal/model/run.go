package model

import "time"

// RunStatus tracks a stored run's lifecycle.
type RunStatus string

// Run statuses. Failed marks a run the pipeline aborted without a report;
// runs with collaborator failures still complete with one.
const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one stored workflow invocation with its final report.
type Run struct {
	ID        string    `json:"id"`
	Input     RunInput  `json:"input"`
	Status    RunStatus `json:"status"`
	Report    *Report   `json:"report,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
