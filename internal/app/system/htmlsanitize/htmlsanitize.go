// Package htmlsanitize cleans user-supplied free text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = newUGCPolicy()
	strict = bluemonday.StrictPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize keeps safe formatting markup (paragraphs, emphasis, lists,
// tables, links) and drops scripts, event handlers and javascript: URLs.
// Used for communication bodies, which are often pasted from email.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// StripTags removes all markup and returns plain text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
