// internal/app/system/htmlsanitize/htmlsanitize.go
//
// htmlsanitize filters operator-entered rich text (console notes, review
// annotations) down to a safe HTML subset before storage or display.
package htmlsanitize

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the shared sanitization policy: the UGC baseline plus the extra
// formatting and table attributes the console renders.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("u", "s", "sub", "sup", "mark")

	tableElements := []string{"table", "thead", "tbody", "tfoot", "tr", "th", "td"}
	p.AllowAttrs("class").OnElements(tableElements...)
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowStyles("width", "text-align").OnElements(tableElements...)

	return p
}

// Sanitize strips unsafe markup, keeping the allowed formatting subset.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes and marks the result safe for template output.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// IsPlainText reports whether the string carries no HTML tags. Lone < or >
// characters (comparisons, arrows) do not count as markup.
func IsPlainText(s string) bool {
	return !tagPattern.MatchString(s)
}

// PlainTextToHTML escapes plain text and converts newlines to <br>, wrapped
// in a paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay renders stored text for templates: plain text is escaped
// and paragraph-wrapped, anything with markup is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
