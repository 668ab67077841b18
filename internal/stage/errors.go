package stage

import "errors"

// Transition errors.
var (
	ErrUnknownStage         = errors.New("unknown stage")
	ErrBackTransition       = errors.New("stage transitions only move forward")
	ErrTransitionInProgress = errors.New("stage transition already in progress")
	ErrAlreadyRegistered    = errors.New("scene already registered for stage")
	ErrNotStarted           = errors.New("stage machine not started")
)
