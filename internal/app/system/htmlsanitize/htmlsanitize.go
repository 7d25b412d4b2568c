// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips every tag from s and returns plain text. Entities are
// decoded so "A & B" survives unchanged; consumers escape on output.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Fields applies Text to each pointed-to string.
func Fields(ps ...*string) {
	for _, p := range ps {
		if p != nil {
			*p = Text(*p)
		}
	}
}
