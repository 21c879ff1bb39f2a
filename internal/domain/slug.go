package domain

import (
	"strings"
	"unicode"
)

// Slugify derives the URL slug of a title: lowercase ASCII letters and digits,
// whitespace runs turned into single hyphens, no leading or trailing hyphen.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}

	return b.String()
}
