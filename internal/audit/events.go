// Package audit records every authority decision and execution outcome.
// Write must never block the caller: a full buffer drops the newest event
// and logs a warning rather than stall the command path behind storage.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Writer is the sink every authority and executor decision is reported
// through. Close drains any buffered events before returning.
type Writer interface {
	Write(event *Event)
	Close()
}

// Event is one decision or execution outcome persisted for later review.
// {ID, Timestamp, ToolID, DenialReason, ProjectID} is the audit event
// spec.md §6 requires; Stage/Decision/ExitCode/DurationMs are this repo's
// enrichment so the executor's own outcomes share the same sink.
type Event struct {
	ID           uuid.UUID
	Timestamp    time.Time
	ToolID       string
	ProjectID    string // hex-encoded AuthorityToken.ProjectID
	Stage        string // "authority" or "executor"
	Decision     string // "allow", "deny", "error"
	DenialReason string
	Detail       string
	ExitCode     int
	DurationMs   float64
}

// NewEvent stamps a fresh event with a random ID and the current time.
func NewEvent(toolID, projectID, stage, decision string) *Event {
	return &Event{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		ToolID:    toolID,
		ProjectID: projectID,
		Stage:     stage,
		Decision:  decision,
	}
}
