package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/infrastructure/storage"
	"ContentPublisher/internal/ports"
	"ContentPublisher/internal/templates"
)

var fixedNow = time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)

type fakeSEO struct {
	calls int
}

func (f *fakeSEO) AnalyzeContent(_ context.Context, _, _ string) (ports.SEOReport, error) {
	f.calls++
	return ports.SEOReport{Score: 64, WordCount: 320}, nil
}

type fakeAI struct {
	facts       []domain.StructuredFact
	readability float64

	// block, when set, holds ExtractFacts until closed or ctx is done.
	block   chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (f *fakeAI) ExtractFacts(ctx context.Context, _ string) ([]domain.StructuredFact, error) {
	if f.entered != nil {
		f.once.Do(func() { close(f.entered) })
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.facts, nil
}

func (f *fakeAI) GenerateAIFormat(_ context.Context, body string) (string, error) {
	return "Content:\n" + body, nil
}

func (f *fakeAI) AnalyzeContent(_ context.Context, _ string) (ports.AIReport, error) {
	return ports.AIReport{ReadabilityScore: f.readability}, nil
}

type fixedScoring struct {
	overall float64
}

func (f fixedScoring) Score(_ ports.SEOReport, _ ports.AIReport) domain.ContentScore {
	return domain.ContentScore{Overall: f.overall, SEO: f.overall, Readability: f.overall, AIOptimization: f.overall}
}

type harness struct {
	repo     *storage.MemoryRepository
	content  *ContentService
	workflow *WorkflowEngine
}

type harnessOptions struct {
	ai            ports.AIScorer
	scoring       ports.ScoringPolicy
	stepTimeout   time.Duration
	reviewMinimum *float64
	// wrap, when set, decorates the repository seen by the services.
	wrap func(ports.ContentRepository) ports.ContentRepository
}

// slowPublishRepository delays saves of published content past a step deadline.
type slowPublishRepository struct {
	ports.ContentRepository
	delay time.Duration
}

func (r slowPublishRepository) Save(ctx context.Context, content domain.Content) error {
	if content.Status == domain.StatusPublished {
		time.Sleep(r.delay)
	}
	return r.ContentRepository.Save(ctx, content)
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	if opts.ai == nil {
		opts.ai = &fakeAI{
			facts:       []domain.StructuredFact{{Statement: "The fund raised $120M in 2024.", Category: "financial", Confidence: 0.9}},
			readability: 62,
		}
	}

	repo := storage.NewMemoryRepository()
	var services ports.ContentRepository = repo
	if opts.wrap != nil {
		services = opts.wrap(repo)
	}
	registry := templates.MustBuiltin()
	clock := func() time.Time { return fixedNow }

	content := NewContentService(ContentDeps{
		Repository: services,
		Templates:  registry,
		SEO:        &fakeSEO{},
		AI:         opts.ai,
		Scoring:    opts.scoring,
		Clock:      clock,
	})
	workflow := NewWorkflowEngine(WorkflowDeps{
		Content:       content,
		Repository:    services,
		Templates:     registry,
		AI:            opts.ai,
		Organization:  "Example Ventures",
		ReviewMinimum: opts.reviewMinimum,
		StepTimeout:   opts.stepTimeout,
		Clock:         clock,
	})

	return &harness{repo: repo, content: content, workflow: workflow}
}

func longBody() string {
	var b strings.Builder
	b.WriteString("<h2>Introduction</h2>\n")
	b.WriteString(strings.Repeat("Founders who ship early learn faster than their competitors. ", 40))
	b.WriteString("\n<h2>Key Takeaways</h2>\n")
	b.WriteString(strings.Repeat("Talk to customers every week and measure retention. ", 20))
	return b.String()
}

func validInput() ContentInput {
	return ContentInput{
		Title: "How We Evaluate Pre-Seed Founders in 2025",
		Body:  longBody(),
		Metadata: &domain.Metadata{
			Title:       "How We Evaluate Pre-Seed Founders in 2025",
			Description: strings.Repeat("A practical look at the signals we weigh before leading a pre-seed round. ", 2),
			Keywords:    []string{"pre-seed", "founders"},
		},
		Author:   "Investment Team",
		Tags:     []string{"pre-seed"},
		Category: "insights",
	}
}

func mustCreate(t *testing.T, h *harness, input ContentInput) *domain.Content {
	t.Helper()
	content, err := h.content.CreateContent(context.Background(), "insight-article", input)
	if err != nil {
		t.Fatalf("CreateContent error: %v", err)
	}
	return content
}
