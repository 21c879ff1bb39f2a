package usecase

import (
	"math"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

// PlaceholderScoring returns fixed sub-scores regardless of the analyzer reports.
// Swap in a real ports.ScoringPolicy to weight the reports.
type PlaceholderScoring struct{}

var _ ports.ScoringPolicy = PlaceholderScoring{}

const (
	placeholderSEO         = 85
	placeholderReadability = 80
	placeholderAI          = 75
	placeholderPerformance = 90
)

// Score implements ports.ScoringPolicy.
func (PlaceholderScoring) Score(_ ports.SEOReport, _ ports.AIReport) domain.ContentScore {
	return domain.ContentScore{
		Overall:        Overall(placeholderSEO, placeholderReadability, placeholderAI),
		SEO:            placeholderSEO,
		Readability:    placeholderReadability,
		AIOptimization: placeholderAI,
		Performance:    placeholderPerformance,
	}
}

// ReportScoring derives sub-scores from the analyzer reports.
type ReportScoring struct{}

var _ ports.ScoringPolicy = ReportScoring{}

// Score implements ports.ScoringPolicy.
func (ReportScoring) Score(seo ports.SEOReport, ai ports.AIReport) domain.ContentScore {
	aiScore := ai.ReadabilityScore
	if seo.HeadingCount > 0 {
		aiScore = math.Min(100, aiScore+10)
	}
	return domain.ContentScore{
		Overall:        Overall(seo.Score, ai.ReadabilityScore, aiScore),
		SEO:            seo.Score,
		Readability:    ai.ReadabilityScore,
		AIOptimization: aiScore,
		Performance:    placeholderPerformance,
	}
}

// Overall weighs the sub-scores 40/30/30 and rounds to a whole number.
func Overall(seo, readability, ai float64) float64 {
	return math.Round(0.4*seo + 0.3*readability + 0.3*ai)
}
