package domain

import "time"

// WorkflowStatus tracks the overall state of a publishing run.
type WorkflowStatus string

const (
	WorkflowPending    WorkflowStatus = "pending"
	WorkflowInProgress WorkflowStatus = "in_progress"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

// StepType groups workflow steps by purpose.
type StepType string

const (
	StepValidation   StepType = "validation"
	StepOptimization StepType = "optimization"
	StepReview       StepType = "review"
	StepPublish      StepType = "publish"
)

// StepStatus tracks one step of a publishing run.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// WorkflowStep is a single stage of the publishing pipeline.
type WorkflowStep struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       StepType   `json:"type"`
	Status     StepStatus `json:"status"`
	Result     any        `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMS int64      `json:"duration,omitempty"`
}

// PublishingWorkflow is the five-step pipeline run for one content item.
type PublishingWorkflow struct {
	ContentID   string         `json:"contentId"`
	Steps       []WorkflowStep `json:"steps"`
	CurrentStep int            `json:"currentStep"`
	Status      WorkflowStatus `json:"status"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Errors      []string       `json:"errors"`
}

// Clone copies the step list and error list.
func (w PublishingWorkflow) Clone() PublishingWorkflow {
	out := w
	out.Steps = append([]WorkflowStep(nil), w.Steps...)
	out.Errors = append([]string(nil), w.Errors...)
	if w.CompletedAt != nil {
		ts := *w.CompletedAt
		out.CompletedAt = &ts
	}
	return out
}
