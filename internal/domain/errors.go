package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrContentNotFound  = errors.New("content not found")
	ErrWorkflowActive   = errors.New("workflow already in progress")
)

// ValidationError names the first rule a content item failed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ScoreBelowThresholdError is raised by the review gate.
type ScoreBelowThresholdError struct {
	Score   float64
	Minimum float64
}

func (e *ScoreBelowThresholdError) Error() string {
	return fmt.Sprintf("content score %.0f is below the required minimum of %.0f", e.Score, e.Minimum)
}

// StepError wraps a failure with the name of the workflow step that raised it.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
