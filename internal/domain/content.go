package domain

import "time"

// ContentStatus enumerates publishing milestones.
type ContentStatus string

const (
	StatusDraft      ContentStatus = "draft"
	StatusReview     ContentStatus = "review"
	StatusOptimizing ContentStatus = "optimizing"
	StatusReady      ContentStatus = "ready"
	StatusPublished  ContentStatus = "published"
)

// Content is a single article, page or profile managed by the engine.
type Content struct {
	ID          string             `json:"id"`
	TemplateID  string             `json:"templateId"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Body        string             `json:"body"`
	Metadata    Metadata           `json:"metadata"`
	Score       ContentScore       `json:"score"`
	AIOptimized AIOptimizedContent `json:"aiOptimized"`
	Status      ContentStatus      `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	PublishedAt *time.Time         `json:"publishedAt,omitempty"`
	Author      string             `json:"author"`
	Tags        []string           `json:"tags"`
	Category    string             `json:"category"`
}

// Metadata holds the SEO-facing fields of a content item.
type Metadata struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Keywords       []string       `json:"keywords"`
	CanonicalURL   string         `json:"canonicalUrl,omitempty"`
	OpenGraph      OpenGraph      `json:"openGraph"`
	StructuredData map[string]any `json:"structuredData,omitempty"`
}

// OpenGraph mirrors the og:* tags.
type OpenGraph struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Type        string `json:"type,omitempty"`
}

// ContentScore is the result of the last optimization pass.
type ContentScore struct {
	Overall        float64      `json:"overall"`
	SEO            float64      `json:"seo"`
	Readability    float64      `json:"readability"`
	AIOptimization float64      `json:"aiOptimization"`
	Performance    float64      `json:"performance"`
	Suggestions    []Suggestion `json:"suggestions"`
	LastCalculated time.Time    `json:"lastCalculated"`
}

// Priority ranks optimization suggestions.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight orders priorities: high=3, medium=2, low=1.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Suggestion is one actionable improvement.
type Suggestion struct {
	Type     string   `json:"type"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
	Impact   int      `json:"impact"`
	Effort   int      `json:"effort"`
}

// StructuredFact is a claim pulled out of the body for AI consumption.
type StructuredFact struct {
	Statement  string  `json:"statement"`
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// Citation references an external source backing the content.
type Citation struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}

// AIOptimizedContent is the machine-facing rendering of a content item.
type AIOptimizedContent struct {
	StructuredFacts   []StructuredFact `json:"structuredFacts"`
	Citations         []Citation       `json:"citations"`
	ReadabilityScore  float64          `json:"readabilityScore"`
	AIReadableFormat  string           `json:"aiReadableFormat"`
	TrainingOptimized bool             `json:"trainingOptimized"`
}

// ContentPerformance aggregates traffic figures for a published item.
type ContentPerformance struct {
	ContentID      string             `json:"contentId"`
	URL            string             `json:"url"`
	PageViews      int                `json:"pageViews"`
	UniqueVisitors int                `json:"uniqueVisitors"`
	AvgTimeOnPage  float64            `json:"avgTimeOnPage"`
	BounceRate     float64            `json:"bounceRate"`
	ConversionRate float64            `json:"conversionRate"`
	Metrics        map[string]float64 `json:"metrics"`
	LastUpdated    time.Time          `json:"lastUpdated"`
}

// Clone deep-copies the slices and maps so callers can mutate the result freely.
func (c Content) Clone() Content {
	out := c
	out.Tags = append([]string(nil), c.Tags...)
	out.Metadata.Keywords = append([]string(nil), c.Metadata.Keywords...)
	if c.Metadata.StructuredData != nil {
		out.Metadata.StructuredData = make(map[string]any, len(c.Metadata.StructuredData))
		for k, v := range c.Metadata.StructuredData {
			out.Metadata.StructuredData[k] = v
		}
	}
	out.Score.Suggestions = append([]Suggestion(nil), c.Score.Suggestions...)
	out.AIOptimized.StructuredFacts = append([]StructuredFact(nil), c.AIOptimized.StructuredFacts...)
	out.AIOptimized.Citations = append([]Citation(nil), c.AIOptimized.Citations...)
	if c.PublishedAt != nil {
		ts := *c.PublishedAt
		out.PublishedAt = &ts
	}
	return out
}
