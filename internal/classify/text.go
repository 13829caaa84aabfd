package classify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	trackingRegex   = regexp.MustCompile(`[?&](utm_|ref=|source=)[^&]*`)
	trailingQRegex  = regexp.MustCompile(`\?$`)
)

// Fold lowercases and strips diacritics so "Ingénieur Données" and
// "ingenieur donnees" compare equal. Upstream sites are inconsistent about
// accents even within a single listing.
func Fold(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		return strings.ToLower(str)
	}
	return strings.ToLower(result)
}

// CleanText collapses newlines and runs of whitespace into single spaces.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// ExtractSnippet shortens a description to maxLength, cutting at a word
// boundary and appending an ellipsis.
func ExtractSnippet(description string, maxLength int) string {
	if description == "" {
		return ""
	}

	cleaned := CleanText(description)
	r := []rune(cleaned)
	if len(r) <= maxLength {
		return cleaned
	}

	snippet := string(r[:maxLength])
	if lastSpace := strings.LastIndex(snippet, " "); lastSpace > 0 {
		snippet = snippet[:lastSpace]
	}
	return snippet + "..."
}

// NormalizeURL strips common tracking parameters so the same posting reached
// through different campaign links still dedupes on its URL.
func NormalizeURL(url string) string {
	if url == "" {
		return ""
	}
	url = trackingRegex.ReplaceAllString(url, "")
	url = trailingQRegex.ReplaceAllString(url, "")
	return strings.TrimSpace(url)
}
