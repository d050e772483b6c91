package world

import (
	"regexp"
	"strings"
)

// tags are MiniMessage style: <red>, </red>, <#ff0000>, <hover:show_text:'x'>.
var markupTag = regexp.MustCompile(`</?(?:#[0-9a-fA-F]{6}|[a-z_]+(?::[^<>]*)?)>`)

// MarkupFormatter renders user markup as plain text. Colour and decoration
// tags are dropped; "<br>" and "<newline>" become line breaks.
type MarkupFormatter struct{}

func (MarkupFormatter) Render(markup string) string {
	out := strings.NewReplacer("<br>", "\n", "<newline>", "\n").Replace(markup)
	return markupTag.ReplaceAllString(out, "")
}
