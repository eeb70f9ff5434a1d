package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

const excerptLength = 150

// Slugify converts a title into a URL-safe slug: lowercase, [a-z0-9-] only,
// runs of other characters collapsed into single dashes.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// IsValidSlug reports whether s matches the slug shape [a-z0-9-]+.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// IsNumericID reports whether s looks like a primary key rather than a slug.
func IsNumericID(s string) bool {
	return numericPattern.MatchString(s)
}

// Excerpt derives a short plain-text preview from article content, cutting
// at a word boundary near the configured length.
func Excerpt(content string) string {
	plain := strings.TrimSpace(htmlTagPattern.ReplaceAllString(content, " "))
	plain = strings.Join(strings.Fields(plain), " ")
	if len(plain) <= excerptLength {
		return plain
	}
	cut := plain[:excerptLength]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
