package workflow

import "errors"

var (
	// ErrDuplicateInstance is returned by StartWorkflow when an instance
	// already exists for the (workflow_id, subject_type, subject_id) triple.
	ErrDuplicateInstance = errors.New("ERR_DUPLICATE: workflow instance already exists")
	ErrUnknownWorkflow   = errors.New("unknown workflow definition")
	ErrUnknownInstance   = errors.New("unknown workflow instance")
	// ErrInvalidTransition is returned when a manual transition targets a
	// state not listed among the current state's outgoing edges (I9).
	ErrInvalidTransition = errors.New("invalid state transition")
)
