package ai

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

const maxSummaryFacts = 5

var (
	numberExpr    = regexp.MustCompile(`\d`)
	financialExpr = regexp.MustCompile(`[$€£]\s?\d|\d+(\.\d+)?\s?(million|billion|[mMbB]\b)`)
	claimMarkers  = []string{"according to", "founded", "raised", "invested", "announced", "acquired"}
)

// Scorer is the in-process AI scorer: heuristic fact extraction, Flesch readability
// and a plain-text AI rendering, optionally delegated to a Formatter.
type Scorer struct {
	base      *url.URL
	formatter ports.Formatter
}

var _ ports.AIScorer = (*Scorer)(nil)

// NewScorer resolves relative links in HTML bodies against siteURL.
func NewScorer(siteURL string, formatter ports.Formatter) *Scorer {
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		base = nil
	}
	return &Scorer{base: base, formatter: formatter}
}

// ExtractFacts keeps sentences that carry figures or attributable claims.
func (s *Scorer) ExtractFacts(ctx context.Context, body string) ([]domain.StructuredFact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	facts := make([]domain.StructuredFact, 0)
	for _, sentence := range sentences(plainText(body, s.base)) {
		switch {
		case financialExpr.MatchString(sentence):
			facts = append(facts, domain.StructuredFact{Statement: sentence, Category: "financial", Confidence: 0.9})
		case numberExpr.MatchString(sentence):
			facts = append(facts, domain.StructuredFact{Statement: sentence, Category: "statistic", Confidence: 0.85})
		case hasClaimMarker(sentence):
			facts = append(facts, domain.StructuredFact{Statement: sentence, Category: "claim", Confidence: 0.6})
		}
	}
	return facts, nil
}

// GenerateAIFormat renders the body as a summary, key facts and normalized text.
func (s *Scorer) GenerateAIFormat(ctx context.Context, body string) (string, error) {
	if s.formatter != nil {
		out, err := s.formatter.GenerateAIFormat(ctx, body)
		if err != nil {
			return "", fmt.Errorf("formatter: %w", err)
		}
		return out, nil
	}

	text := plainText(body, s.base)
	parts := sentences(text)

	var b strings.Builder
	if len(parts) > 0 {
		b.WriteString("Summary: ")
		b.WriteString(parts[0])
		b.WriteString("\n\n")
	}

	facts, err := s.ExtractFacts(ctx, body)
	if err != nil {
		return "", err
	}
	if len(facts) > 0 {
		b.WriteString("Key facts:\n")
		for i, fact := range facts {
			if i == maxSummaryFacts {
				break
			}
			b.WriteString("- ")
			b.WriteString(fact.Statement)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Content:\n")
	b.WriteString(text)
	return b.String(), nil
}

// AnalyzeContent reports the Flesch reading ease of the body.
func (s *Scorer) AnalyzeContent(ctx context.Context, body string) (ports.AIReport, error) {
	if err := ctx.Err(); err != nil {
		return ports.AIReport{}, err
	}
	return ports.AIReport{ReadabilityScore: fleschReadingEase(plainText(body, s.base))}, nil
}

func hasClaimMarker(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, marker := range claimMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
