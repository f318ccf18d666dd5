// Package htmlsanitize strips markup from applicant-entered text before
// it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag; it is safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// PlainText removes all HTML from s and trims it. Entities the policy
// escapes are decoded again so the stored value is what the user typed
// minus the markup; templates escape it on output.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	i := strings.IndexByte(s, '<')
	return i < 0 || !strings.Contains(s[i:], ">")
}
