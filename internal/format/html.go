package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML entity-encodes & < > " and ' so user text can be placed in
// element content or quoted attribute values.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
