package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idSuffix   = 9

	minTitleLength       = 30
	minDescriptionLength = 120
	minWordCount         = 300
)

// ContentInput carries the caller-supplied fields of a new content item.
// Zero fields keep the generated defaults; a non-nil Metadata replaces the default block.
type ContentInput struct {
	Title    string
	Body     string
	Metadata *domain.Metadata
	Author   string
	Tags     []string
	Category string
}

// ContentDeps wires the driven adapters used by the content service.
type ContentDeps struct {
	Repository ports.ContentRepository
	Templates  ports.TemplateCatalog
	SEO        ports.SEOAnalyzer
	AI         ports.AIScorer
	Scoring    ports.ScoringPolicy
	Logger     *slog.Logger
	Clock      func() time.Time
}

// ContentService creates, scores and reads content records.
type ContentService struct {
	repository ports.ContentRepository
	templates  ports.TemplateCatalog
	seo        ports.SEOAnalyzer
	ai         ports.AIScorer
	scoring    ports.ScoringPolicy
	log        *slog.Logger
	clock      func() time.Time

	locks contentLocks
}

// NewContentService constructs the content component.
func NewContentService(deps ContentDeps) *ContentService {
	scoring := deps.Scoring
	if scoring == nil {
		scoring = PlaceholderScoring{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ContentService{
		repository: deps.Repository,
		templates:  deps.Templates,
		seo:        deps.SEO,
		ai:         deps.AI,
		scoring:    scoring,
		log:        deps.Logger,
		clock:      clock,
	}
}

// CreateContent builds a draft from the template and stores it.
func (s *ContentService) CreateContent(ctx context.Context, templateID string, input ContentInput) (*domain.Content, error) {
	tmpl, err := s.templates.Resolve(templateID)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	now := s.clock()
	id, err := newContentID(now)
	if err != nil {
		return nil, fmt.Errorf("generate content id: %w", err)
	}

	content := domain.Content{
		ID:         id,
		TemplateID: tmpl.ID,
		Title:      input.Title,
		Slug:       domain.Slugify(input.Title),
		Body:       input.Body,
		Metadata: domain.Metadata{
			Title:    input.Title,
			Keywords: append([]string(nil), tmpl.SEO.Keywords...),
		},
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
		Author:    input.Author,
		Tags:      append([]string(nil), input.Tags...),
		Category:  input.Category,
	}
	if input.Metadata != nil {
		content.Metadata = *input.Metadata
	}

	if err := s.repository.Save(ctx, content); err != nil {
		return nil, fmt.Errorf("persist content %s: %w", id, err)
	}
	s.debug("content created", "id", id, "template", tmpl.ID)

	out := content.Clone()
	return &out, nil
}

// OptimizeContent rescores a content item and persists the result.
func (s *ContentService) OptimizeContent(ctx context.Context, contentID string) (domain.ContentScore, error) {
	unlock := s.locks.lock(contentID)
	defer unlock()
	return s.optimize(ctx, contentID)
}

// optimize expects the caller to hold the content lock.
func (s *ContentService) optimize(ctx context.Context, contentID string) (domain.ContentScore, error) {
	content, err := s.load(ctx, contentID)
	if err != nil {
		return domain.ContentScore{}, err
	}
	if _, err := s.templates.Resolve(content.TemplateID); err != nil {
		return domain.ContentScore{}, fmt.Errorf("optimize content %s: %w", contentID, err)
	}

	var seoReport ports.SEOReport
	if s.seo != nil {
		seoReport, err = s.seo.AnalyzeContent(ctx, content.Body, content.Title)
		if err != nil {
			return domain.ContentScore{}, fmt.Errorf("analyze seo %s: %w", contentID, err)
		}
	}

	var aiReport ports.AIReport
	if s.ai != nil {
		aiReport, err = s.ai.AnalyzeContent(ctx, content.Body)
		if err != nil {
			return domain.ContentScore{}, fmt.Errorf("analyze ai readiness %s: %w", contentID, err)
		}
	}

	now := s.clock()
	score := s.scoring.Score(seoReport, aiReport)
	score.Suggestions = Suggestions(*content)
	score.LastCalculated = now

	content.Score = score
	content.UpdatedAt = now
	if err := ctx.Err(); err != nil {
		return domain.ContentScore{}, err
	}
	if err := s.repository.Save(ctx, *content); err != nil {
		return domain.ContentScore{}, fmt.Errorf("persist score %s: %w", contentID, err)
	}

	s.debug("content optimized", "id", contentID, "overall", score.Overall, "suggestions", len(score.Suggestions))
	return score, nil
}

// Suggestions evaluates every improvement rule and orders the result by priority.
func Suggestions(content domain.Content) []domain.Suggestion {
	out := []domain.Suggestion{}

	if utf8.RuneCountInString(content.Title) < minTitleLength {
		out = append(out, domain.Suggestion{
			Type:     "title",
			Priority: domain.PriorityHigh,
			Message:  "Title too short",
			Impact:   8,
			Effort:   3,
		})
	}
	if utf8.RuneCountInString(content.Metadata.Description) < minDescriptionLength {
		out = append(out, domain.Suggestion{
			Type:     "meta_description",
			Priority: domain.PriorityHigh,
			Message:  "Meta description missing or too short",
			Impact:   9,
			Effort:   4,
		})
	}
	if len(content.AIOptimized.StructuredFacts) == 0 {
		out = append(out, domain.Suggestion{
			Type:     "structured_facts",
			Priority: domain.PriorityMedium,
			Message:  "No structured facts found",
			Impact:   7,
			Effort:   5,
		})
	}
	if len(strings.Fields(content.Body)) < minWordCount {
		out = append(out, domain.Suggestion{
			Type:     "content_length",
			Priority: domain.PriorityMedium,
			Message:  "Content too short",
			Impact:   6,
			Effort:   6,
		})
	}

	SortSuggestions(out)
	return out
}

// SortSuggestions orders high before medium before low, keeping ties stable.
func SortSuggestions(suggestions []domain.Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority.Weight() > suggestions[j].Priority.Weight()
	})
}

// GetContent returns nil when the id is unknown.
func (s *ContentService) GetContent(ctx context.Context, contentID string) (*domain.Content, error) {
	content, err := s.repository.Get(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("load content %s: %w", contentID, err)
	}
	return content, nil
}

// GetAllContent lists every stored content item.
func (s *ContentService) GetAllContent(ctx context.Context) ([]domain.Content, error) {
	items, err := s.repository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// GetAllTemplates lists the registered templates.
func (s *ContentService) GetAllTemplates() []domain.ContentTemplate {
	return s.templates.All()
}

// GetContentPerformance always reports no data yet: traffic analytics are not collected.
func (s *ContentService) GetContentPerformance(_ context.Context, _ string) (*domain.ContentPerformance, error) {
	return nil, nil
}

// GetPerformanceOptimizationRecommendations returns an empty list while no performance data exists.
func (s *ContentService) GetPerformanceOptimizationRecommendations(ctx context.Context, contentID string) ([]domain.Suggestion, error) {
	perf, err := s.GetContentPerformance(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if perf == nil {
		return []domain.Suggestion{}, nil
	}
	return performanceSuggestions(*perf), nil
}

func performanceSuggestions(perf domain.ContentPerformance) []domain.Suggestion {
	out := []domain.Suggestion{}
	if perf.BounceRate > 0.7 {
		out = append(out, domain.Suggestion{
			Type:     "engagement",
			Priority: domain.PriorityHigh,
			Message:  "High bounce rate",
			Impact:   8,
			Effort:   5,
		})
	}
	if perf.PageViews > 0 && perf.AvgTimeOnPage < 30 {
		out = append(out, domain.Suggestion{
			Type:     "engagement",
			Priority: domain.PriorityMedium,
			Message:  "Low time on page",
			Impact:   6,
			Effort:   4,
		})
	}
	if perf.PageViews > 0 && perf.ConversionRate < 0.01 {
		out = append(out, domain.Suggestion{
			Type:     "conversion",
			Priority: domain.PriorityLow,
			Message:  "Low conversion rate",
			Impact:   5,
			Effort:   6,
		})
	}
	SortSuggestions(out)
	return out
}

// contentLocks serializes read-modify-write cycles per content id.
type contentLocks struct {
	mu    sync.Mutex
	byKey map[string]*sync.Mutex
}

func (l *contentLocks) lock(contentID string) func() {
	l.mu.Lock()
	if l.byKey == nil {
		l.byKey = map[string]*sync.Mutex{}
	}
	m, ok := l.byKey[contentID]
	if !ok {
		m = &sync.Mutex{}
		l.byKey[contentID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// load returns a mutable copy or ErrContentNotFound.
func (s *ContentService) load(ctx context.Context, contentID string) (*domain.Content, error) {
	content, err := s.repository.Get(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("load content %s: %w", contentID, err)
	}
	if content == nil {
		return nil, fmt.Errorf("content %s: %w", contentID, domain.ErrContentNotFound)
	}
	return content, nil
}

func newContentID(now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(idAlphabet, idSuffix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("content_%d_%s", now.UnixMilli(), suffix), nil
}

func (s *ContentService) debug(msg string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.Debug(msg, args...)
}
