package telegram

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
	headerRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.*)$`)
)

// markdownToHTML converts the lightweight markdown the model tends to emit
// into Telegram HTML. Replies always pass through here so raw markup is
// never shown to the user.
func markdownToHTML(s string) string {
	out := html.EscapeString(s)
	out = headerRe.ReplaceAllString(out, "<b>$1</b>")
	out = boldRe.ReplaceAllString(out, "<b>$1</b>")
	out = codeRe.ReplaceAllString(out, "<code>$1</code>")

	// Normalize list markers; Telegram HTML has no <ul>.
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			indent := line[:len(line)-len(trimmed)]
			lines = append(lines, indent+"• "+trimmed[2:])
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
