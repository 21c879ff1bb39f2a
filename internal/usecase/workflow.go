package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

// DefaultReviewMinimum is the overall score the final review requires.
const DefaultReviewMinimum = 70

// WorkflowDeps wires the collaborators of the publishing workflow.
type WorkflowDeps struct {
	Content       *ContentService
	Repository    ports.ContentRepository
	Templates     ports.TemplateCatalog
	AI            ports.AIScorer
	Organization  string
	ReviewMinimum *float64 // nil selects DefaultReviewMinimum
	StepTimeout   time.Duration
	Logger        *slog.Logger
	Clock         func() time.Time
}

// WorkflowEngine runs the five-step publishing pipeline, one active run per content item.
type WorkflowEngine struct {
	content       *ContentService
	repository    ports.ContentRepository
	templates     ports.TemplateCatalog
	ai            ports.AIScorer
	organization  string
	reviewMinimum float64
	stepTimeout   time.Duration
	log           *slog.Logger
	clock         func() time.Time

	mu        sync.Mutex
	workflows map[string]*domain.PublishingWorkflow
}

type stepFunc func(ctx context.Context, contentID string) (any, error)

type stepDef struct {
	id   string
	name string
	kind domain.StepType
	run  stepFunc
}

// NewWorkflowEngine constructs the publishing workflow component.
func NewWorkflowEngine(deps WorkflowDeps) *WorkflowEngine {
	minimum := float64(DefaultReviewMinimum)
	if deps.ReviewMinimum != nil {
		minimum = *deps.ReviewMinimum
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &WorkflowEngine{
		content:       deps.Content,
		repository:    deps.Repository,
		templates:     deps.Templates,
		ai:            deps.AI,
		organization:  deps.Organization,
		reviewMinimum: minimum,
		stepTimeout:   deps.StepTimeout,
		log:           deps.Logger,
		clock:         clock,
		workflows:     map[string]*domain.PublishingWorkflow{},
	}
}

func (e *WorkflowEngine) steps() []stepDef {
	return []stepDef{
		{id: "validation", name: "Content Validation", kind: domain.StepValidation, run: e.validate},
		{id: "seo-optimization", name: "SEO Optimization", kind: domain.StepOptimization, run: e.optimizeSEO},
		{id: "ai-optimization", name: "AI Optimization", kind: domain.StepOptimization, run: e.optimizeAI},
		{id: "review", name: "Final Review", kind: domain.StepReview, run: e.review},
		{id: "publish", name: "Publish Content", kind: domain.StepPublish, run: e.publish},
	}
}

// StartPublishingWorkflow runs every step in order and stops at the first failure.
// On a step failure it returns the workflow snapshot together with a *domain.StepError.
func (e *WorkflowEngine) StartPublishingWorkflow(ctx context.Context, contentID string) (*domain.PublishingWorkflow, error) {
	content, err := e.repository.Get(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("load content %s: %w", contentID, err)
	}
	if content == nil {
		return nil, fmt.Errorf("start workflow %s: %w", contentID, domain.ErrContentNotFound)
	}

	defs := e.steps()
	wf, err := e.begin(contentID, defs)
	if err != nil {
		return nil, err
	}
	e.info("workflow started", "content", contentID)

	for i, def := range defs {
		e.locked(func() {
			wf.CurrentStep = i
			wf.Steps[i].Status = domain.StepInProgress
		})

		started := e.clock()
		result, runErr := e.runStep(ctx, def, contentID)
		elapsed := e.clock().Sub(started).Milliseconds()

		if runErr != nil {
			stepErr := &domain.StepError{Step: def.name, Err: runErr}
			e.locked(func() {
				wf.Steps[i].Status = domain.StepFailed
				wf.Steps[i].Error = runErr.Error()
				wf.Steps[i].DurationMS = elapsed
				wf.Status = domain.WorkflowFailed
				wf.Errors = append(wf.Errors, stepErr.Error())
			})
			e.warn("workflow failed", "content", contentID, "step", def.name, "error", runErr)
			return e.snapshot(wf), stepErr
		}

		e.locked(func() {
			wf.Steps[i].Status = domain.StepCompleted
			wf.Steps[i].Result = result
			wf.Steps[i].DurationMS = elapsed
		})
		e.debug("workflow step completed", "content", contentID, "step", def.name, "duration_ms", elapsed)
	}

	e.locked(func() {
		done := e.clock()
		wf.Status = domain.WorkflowCompleted
		wf.CompletedAt = &done
	})
	e.info("workflow completed", "content", contentID)
	return e.snapshot(wf), nil
}

// GetWorkflow returns a copy of the latest workflow for the content item, or nil.
func (e *WorkflowEngine) GetWorkflow(contentID string) *domain.PublishingWorkflow {
	e.mu.Lock()
	defer e.mu.Unlock()

	wf, ok := e.workflows[contentID]
	if !ok {
		return nil
	}
	out := wf.Clone()
	return &out
}

// begin registers a fresh run, rejecting content that already has one in progress.
func (e *WorkflowEngine) begin(contentID string, defs []stepDef) (*domain.PublishingWorkflow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.workflows[contentID]; ok && existing.Status == domain.WorkflowInProgress {
		return nil, fmt.Errorf("start workflow %s: %w", contentID, domain.ErrWorkflowActive)
	}

	steps := make([]domain.WorkflowStep, len(defs))
	for i, def := range defs {
		steps[i] = domain.WorkflowStep{
			ID:     def.id,
			Name:   def.name,
			Type:   def.kind,
			Status: domain.StepPending,
		}
	}
	wf := &domain.PublishingWorkflow{
		ContentID: contentID,
		Steps:     steps,
		Status:    domain.WorkflowInProgress,
		StartedAt: e.clock(),
		Errors:    []string{},
	}
	e.workflows[contentID] = wf
	return wf, nil
}

// runStep holds the content lock for the whole step. A step checks its context
// before the final write, so a nil error means the write was committed.
func (e *WorkflowEngine) runStep(ctx context.Context, def stepDef, contentID string) (any, error) {
	unlock := e.content.locks.lock(contentID)
	defer unlock()

	if e.stepTimeout <= 0 {
		return def.run(ctx, contentID)
	}

	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	result, err := def.run(stepCtx, contentID)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("timed out after %s: %w", e.stepTimeout, err)
	}
	return result, err
}

func (e *WorkflowEngine) locked(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

func (e *WorkflowEngine) snapshot(wf *domain.PublishingWorkflow) *domain.PublishingWorkflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := wf.Clone()
	return &out
}

func (e *WorkflowEngine) validate(ctx context.Context, contentID string) (any, error) {
	content, err := e.content.load(ctx, contentID)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.templates.Resolve(content.TemplateID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content.Title) == "" {
		return nil, &domain.ValidationError{Reason: "title is required"}
	}
	if strings.TrimSpace(content.Body) == "" {
		return nil, &domain.ValidationError{Reason: "body is required"}
	}

	body := strings.ToLower(content.Body)
	for _, element := range tmpl.SEO.RequiredElements {
		if strings.EqualFold(element, "title") {
			continue
		}
		name := strings.ToLower(element)
		if !strings.Contains(body, name) && !strings.Contains(body, strings.ReplaceAll(name, "-", " ")) {
			return nil, &domain.ValidationError{Reason: "missing required element: " + element}
		}
	}

	if strings.TrimSpace(content.Metadata.Description) == "" {
		return nil, &domain.ValidationError{Reason: "meta description is required"}
	}
	if len(content.Metadata.Keywords) == 0 {
		return nil, &domain.ValidationError{Reason: "at least one keyword is required"}
	}
	return nil, nil
}

func (e *WorkflowEngine) optimizeSEO(ctx context.Context, contentID string) (any, error) {
	content, err := e.content.load(ctx, contentID)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.templates.Resolve(content.TemplateID)
	if err != nil {
		return nil, err
	}

	schemaType := tmpl.SEO.SchemaType
	if schemaType == "" {
		schemaType = "Article"
	}
	organization := map[string]any{"@type": "Organization", "name": e.organization}

	now := e.clock()
	content.Metadata.StructuredData = map[string]any{
		"@context":      "https://schema.org",
		"@type":         schemaType,
		"headline":      content.Title,
		"description":   content.Metadata.Description,
		"datePublished": content.CreatedAt.UTC().Format(time.RFC3339),
		"dateModified":  now.UTC().Format(time.RFC3339),
		"author":        organization,
		"publisher":     organization,
	}
	content.UpdatedAt = now

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.repository.Save(ctx, *content); err != nil {
		return nil, fmt.Errorf("persist structured data: %w", err)
	}
	return content.Metadata.StructuredData, nil
}

func (e *WorkflowEngine) optimizeAI(ctx context.Context, contentID string) (any, error) {
	if e.ai == nil {
		return nil, errors.New("ai scorer is not configured")
	}

	content, err := e.content.load(ctx, contentID)
	if err != nil {
		return nil, err
	}

	facts, err := e.ai.ExtractFacts(ctx, content.Body)
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}
	formatted, err := e.ai.GenerateAIFormat(ctx, content.Body)
	if err != nil {
		return nil, fmt.Errorf("generate ai format: %w", err)
	}
	report, err := e.ai.AnalyzeContent(ctx, content.Body)
	if err != nil {
		return nil, fmt.Errorf("analyze readability: %w", err)
	}

	content.AIOptimized = domain.AIOptimizedContent{
		StructuredFacts:   facts,
		Citations:         content.AIOptimized.Citations,
		ReadabilityScore:  report.ReadabilityScore,
		AIReadableFormat:  formatted,
		TrainingOptimized: true,
	}
	content.UpdatedAt = e.clock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.repository.Save(ctx, *content); err != nil {
		return nil, fmt.Errorf("persist ai payload: %w", err)
	}
	return map[string]any{
		"facts":            len(facts),
		"readabilityScore": report.ReadabilityScore,
	}, nil
}

func (e *WorkflowEngine) review(ctx context.Context, contentID string) (any, error) {
	score, err := e.content.optimize(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if score.Overall < e.reviewMinimum {
		return nil, &domain.ScoreBelowThresholdError{Score: score.Overall, Minimum: e.reviewMinimum}
	}

	content, err := e.content.load(ctx, contentID)
	if err != nil {
		return nil, err
	}
	content.Status = domain.StatusReady
	content.UpdatedAt = e.clock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.repository.Save(ctx, *content); err != nil {
		return nil, fmt.Errorf("persist review status: %w", err)
	}
	return score.Overall, nil
}

func (e *WorkflowEngine) publish(ctx context.Context, contentID string) (any, error) {
	content, err := e.content.load(ctx, contentID)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	content.Status = domain.StatusPublished
	content.PublishedAt = &now
	content.UpdatedAt = now
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.repository.Save(ctx, *content); err != nil {
		return nil, fmt.Errorf("persist publication: %w", err)
	}

	perf := domain.ContentPerformance{
		ContentID:   content.ID,
		URL:         "/" + content.Slug,
		Metrics:     map[string]float64{},
		LastUpdated: now,
	}
	e.info("performance tracking initialized", "content", perf.ContentID, "url", perf.URL)
	return perf, nil
}

func (e *WorkflowEngine) debug(msg string, args ...any) {
	if e.log == nil {
		return
	}
	e.log.Debug(msg, args...)
}

func (e *WorkflowEngine) info(msg string, args ...any) {
	if e.log == nil {
		return
	}
	e.log.Info(msg, args...)
}

func (e *WorkflowEngine) warn(msg string, args ...any) {
	if e.log == nil {
		return
	}
	e.log.Warn(msg, args...)
}
