package domain

import "regexp"

// Denylist-based markdown sanitizer. This is deliberately not an HTML parser:
// it strips the executable constructs a model could smuggle into example text
// and leaves everything else alone.
var (
	// Paired dangerous elements are removed together with their content.
	dangerousBlockRe = regexp.MustCompile(`(?is)<(?:script|iframe|object|embed)\b[^>]*>.*?</(?:script|iframe|object|embed)\s*>`)

	// Orphan opening or closing dangerous tags left after block removal.
	dangerousTagRe = regexp.MustCompile(`(?i)</?(?:script|iframe|object|embed)\b[^>]*/?>`)

	// Inline event-handler attributes (onclick, onerror, ...).
	eventHandlerRe = regexp.MustCompile(`(?i)\son\w+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)

	// Dangerous URI schemes.
	jsURIRe       = regexp.MustCompile(`(?i)javascript\s*:`)
	dataHTMLURIRe = regexp.MustCompile(`(?i)data\s*:\s*text/html[^"'\s)>]*`)
)

// sanitizeMarkdown removes script/iframe/object/embed elements, inline event
// handlers and javascript:/data:text/html URIs from model-produced markdown.
func sanitizeMarkdown(s string) string {
	s = dangerousBlockRe.ReplaceAllString(s, "")
	s = dangerousTagRe.ReplaceAllString(s, "")
	s = eventHandlerRe.ReplaceAllString(s, "")
	s = jsURIRe.ReplaceAllString(s, "")
	s = dataHTMLURIRe.ReplaceAllString(s, "")
	return s
}

// truncateRunes caps s at limit runes, never splitting a multi-byte character.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
