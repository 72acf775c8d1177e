package workflow

import (
	"time"

	"github.com/sem-os/semcore/internal/types"
)

// AuditAction names the kind of event recorded in an instance's audit trail.
type AuditAction string

const (
	ActionCreated    AuditAction = "created"
	ActionTransition AuditAction = "transition"
)

// AuditEvent is one immutable entry in an instance's history.
type AuditEvent struct {
	Action        AuditAction
	Actor         string
	PreviousState string
	NewState      string
	Reason        string
	At            time.Time
	Details       map[string]any
}

// Instance is one running occurrence of a Definition against a subject.
// Unique per (workflow_id, subject_type, subject_id).
type Instance struct {
	InstanceID   types.ID
	WorkflowID   string
	SubjectType  string
	SubjectID    string
	CurrentState string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
	History      []AuditEvent
}

// Blocker describes why an instance cannot progress past its current state.
type Blocker struct {
	Kind    string
	Context map[string]any
}

// Status is the read-only projection returned by GetStatus.
type Status struct {
	InstanceID   types.ID
	WorkflowID   string
	SubjectType  string
	SubjectID    string
	CurrentState string
	Blockers     []Blocker
	History      []AuditEvent
}
