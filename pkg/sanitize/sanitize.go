// Package sanitize turns user supplied text into plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips every HTML element from s, decodes entities and trims
// surrounding whitespace. Line breaks inside the text are kept.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IndexText is PlainText with block boundaries turned into spaces and all
// whitespace runs collapsed, for search documents.
func IndexText(s string) string {
	s = strings.NewReplacer("</p>", " ", "<br>", " ", "<br/>", " ", "</div>", " ").Replace(s)
	return strings.Join(strings.Fields(PlainText(s)), " ")
}
