package ai

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var (
	sentenceExpr = regexp.MustCompile(`[^.!?]+[.!?]*`)
	tagExpr      = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	blockEndExpr = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|section|article|blockquote|td)>|<br\s*/?>`)
	vowelGroups  = regexp.MustCompile(`[aeiouy]+`)
)

// plainText reduces an HTML body to its main readable text; plain bodies pass through.
func plainText(body string, base *url.URL) string {
	if !tagExpr.MatchString(body) {
		return normalizeSpace(body)
	}

	if base != nil {
		if article, err := readability.FromReader(strings.NewReader(body), base); err == nil && strings.TrimSpace(article.Content) != "" {
			if doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaceBlocks(article.Content))); err == nil {
				if text := normalizeSpace(doc.Text()); text != "" {
					return text
				}
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaceBlocks(body)))
	if err != nil {
		return normalizeSpace(tagExpr.ReplaceAllString(body, " "))
	}
	return normalizeSpace(doc.Text())
}

// spaceBlocks keeps adjacent block elements from gluing their words together.
func spaceBlocks(html string) string {
	return blockEndExpr.ReplaceAllString(html, "$0 ")
}

func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func sentences(text string) []string {
	raw := sentenceExpr.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func syllables(word string) int {
	word = strings.ToLower(strings.Trim(word, ".,;:!?\"'()[]"))
	if word == "" {
		return 0
	}
	count := len(vowelGroups.FindAllString(word, -1))
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// fleschReadingEase scores text on the 0..100 Flesch scale (higher reads easier).
func fleschReadingEase(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentenceCount := len(sentences(text))
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	syllableCount := 0
	for _, w := range words {
		syllableCount += syllables(w)
	}

	score := 206.835 -
		1.015*(float64(len(words))/float64(sentenceCount)) -
		84.6*(float64(syllableCount)/float64(len(words)))

	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
