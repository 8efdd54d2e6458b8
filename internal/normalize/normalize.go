// Package normalize flattens provider markup into the plain-text fields the
// pipeline stores and translates.
package normalize

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var (
	blockExpr      = regexp.MustCompile(`(?i)<\s*/?\s*(?:p|div|br|li|ul|ol|h[1-6]|blockquote|tr)\b[^>]*>`)
	tagExpr        = regexp.MustCompile(`<[^>]*>`)
	inlineWS       = regexp.MustCompile(`[ \t\r\f]+`)
	wsAroundBreaks = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	manyBreaks     = regexp.MustCompile(`\n{3,}`)
	anyWS          = regexp.MustCompile(`\s+`)
)

// Line strips markup and entities and flattens the result to a single
// trimmed line. Used for titles and short descriptions, which never keep
// internal newlines.
func Line(raw string) string {
	if raw == "" {
		return ""
	}
	text := tagExpr.ReplaceAllString(raw, "")
	text = html.UnescapeString(text)
	text = anyWS.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Text strips markup while keeping paragraph structure: block-level
// boundaries become newlines before tags are removed, runs of three or
// more newlines collapse to exactly two, and inline whitespace collapses
// to single spaces. Used for body content that must survive translation
// with its paragraphs intact.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	text := blockExpr.ReplaceAllString(raw, "\n")
	text = tagExpr.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = inlineWS.ReplaceAllString(text, " ")
	text = wsAroundBreaks.ReplaceAllString(text, "\n")
	text = manyBreaks.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ResolveURL makes ref absolute against the page it was found on. Returns
// an empty string when no absolute URL can be produced.
func ResolveURL(pageURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
