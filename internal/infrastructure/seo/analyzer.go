package seo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentPublisher/internal/ports"
)

const (
	minTitleLength  = 30
	maxTitleLength  = 60
	minWordCount    = 300
	maxImagePenalty = 15
)

// Analyzer scores bodies (plain text or HTML fragments) with on-page heuristics.
type Analyzer struct {
	site *url.URL
}

var _ ports.SEOAnalyzer = (*Analyzer)(nil)

// NewAnalyzer treats links to siteURL's host as internal.
func NewAnalyzer(siteURL string) *Analyzer {
	site, err := url.Parse(siteURL)
	if err != nil || site.Host == "" {
		site = nil
	}
	return &Analyzer{site: site}
}

// AnalyzeContent parses the body and returns structural counts plus a 0..100 score.
func (a *Analyzer) AnalyzeContent(ctx context.Context, body, title string) (ports.SEOReport, error) {
	if err := ctx.Err(); err != nil {
		return ports.SEOReport{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ports.SEOReport{}, fmt.Errorf("parse body: %w", err)
	}

	report := ports.SEOReport{
		WordCount:    len(strings.Fields(doc.Text())),
		HeadingCount: doc.Find("h1, h2, h3").Length(),
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if a.isInternal(href) {
			report.InternalLinks++
			return
		}
		report.ExternalLinks++
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			report.ImagesMissing++
		}
	})

	report.Score = score(report, title)
	return report, nil
}

func (a *Analyzer) isInternal(href string) bool {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	if a.site == nil {
		return !parsed.IsAbs() && parsed.Host == ""
	}
	resolved := a.site.ResolveReference(parsed)
	return (resolved.Scheme == "http" || resolved.Scheme == "https") && strings.EqualFold(resolved.Host, a.site.Host)
}

func score(report ports.SEOReport, title string) float64 {
	total := 100.0

	titleLen := len(strings.TrimSpace(title))
	if titleLen < minTitleLength || titleLen > maxTitleLength {
		total -= 10
	}
	if report.WordCount < minWordCount {
		total -= 20
	}
	if report.HeadingCount == 0 {
		total -= 10
	}
	if report.InternalLinks == 0 {
		total -= 10
	}

	penalty := float64(report.ImagesMissing * 5)
	if penalty > maxImagePenalty {
		penalty = maxImagePenalty
	}
	total -= penalty

	if total < 0 {
		return 0
	}
	return total
}
