package ai

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Redaction markers inserted by SanitizeNoCode.
const (
	RedactedBlockMarker = "[removed code block]"
	RedactedLineMarker  = "[removed code-like line]"
)

var (
	codeBlockRE = regexp.MustCompile("(?s)```.*?```")
	codeLineRE  = regexp.MustCompile(`^\s*(def |class |for |while |if |elif |else:|print\(|import |from )`)

	htmlPolicy = bluemonday.StrictPolicy()
)

// SanitizeNoCode is the defense-in-depth safety net behind the provider's own
// no-code compliance: fenced code blocks are removed entirely, lines that look
// like code statements are replaced with a redaction marker, and HTML markup
// is stripped. It runs on every fresh generation result before the text is
// cached or returned.
func SanitizeNoCode(text string) string {
	t := strings.TrimSpace(text)
	t = codeBlockRE.ReplaceAllString(t, RedactedBlockMarker)

	lines := strings.Split(t, "\n")
	for i, line := range lines {
		if codeLineRE.MatchString(line) {
			lines[i] = RedactedLineMarker
		}
	}
	t = strings.Join(lines, "\n")

	// StrictPolicy drops every tag; unescape afterwards so plain-text
	// comparisons like "a < b" survive untouched.
	t = html.UnescapeString(htmlPolicy.Sanitize(t))

	return strings.TrimSpace(t)
}
