package ports

import (
	"context"
	"time"

	"ContentPublisher/internal/domain"
)

// ContentRepository persists content records.
type ContentRepository interface {
	// Get returns nil, nil when the id is unknown.
	Get(ctx context.Context, id string) (*domain.Content, error)
	List(ctx context.Context) ([]domain.Content, error)
	Save(ctx context.Context, content domain.Content) error
}

// TemplateCatalog resolves content templates by id.
type TemplateCatalog interface {
	Resolve(id string) (domain.ContentTemplate, error)
	All() []domain.ContentTemplate
}

// SEOReport is the raw output of a textual SEO analysis.
type SEOReport struct {
	Score         float64
	WordCount     int
	HeadingCount  int
	InternalLinks int
	ExternalLinks int
	ImagesMissing int
}

// SEOAnalyzer scores body text against search-engine heuristics.
type SEOAnalyzer interface {
	AnalyzeContent(ctx context.Context, body, title string) (SEOReport, error)
}

// AIReport is the raw output of an AI-readiness analysis.
type AIReport struct {
	ReadabilityScore float64
}

// AIScorer extracts facts and renders bodies for AI consumers.
type AIScorer interface {
	ExtractFacts(ctx context.Context, body string) ([]domain.StructuredFact, error)
	GenerateAIFormat(ctx context.Context, body string) (string, error)
	AnalyzeContent(ctx context.Context, body string) (AIReport, error)
}

// Formatter renders a body into the AI-readable format (e.g. via an LLM).
type Formatter interface {
	GenerateAIFormat(ctx context.Context, body string) (string, error)
}

// ScoringPolicy turns analyzer outputs into a content score.
type ScoringPolicy interface {
	Score(seo SEOReport, ai AIReport) domain.ContentScore
}

// FlagUpdate is the partial update applied to a feature flag.
type FlagUpdate struct {
	Enabled bool
}

// FlagStore is the shared feature-flag store.
type FlagStore interface {
	UpdateFlag(ctx context.Context, name string, update FlagUpdate) error
	IsEnabled(ctx context.Context, name string) (bool, error)
}

// Deployer rolls back the current deployment.
type Deployer interface {
	RollbackDeployment(ctx context.Context, reason string) error
}

// AlertNotifier forwards performance alerts to an outbound channel.
type AlertNotifier interface {
	PublishAlert(ctx context.Context, alert domain.PerformanceAlert) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
