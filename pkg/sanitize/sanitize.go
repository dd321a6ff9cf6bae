// Package sanitize strips markup from free-text fields before they are stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes every HTML tag, keeping the inner text. Entities produced by the
// policy are decoded again so "PT A & B" round-trips unchanged.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}
