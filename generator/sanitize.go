package generator

import (
	"regexp"
	"strings"
)

var (
	// opening fence, optionally tagged: ```html, ```HTML, ``` html
	openFenceRe = regexp.MustCompile("(?i)```[ \\t]*html[ \\t]*\\r?\\n?")
	// a fence carrying any other language tag at the very start of the reply
	leadingFenceRe = regexp.MustCompile("^```[ \\t]*[a-zA-Z0-9_+-]*[ \\t]*\\r?\\n")
	// the echoed language tag alone on the first line, left behind without its fence
	echoedLangLineRe = regexp.MustCompile(`(?i)^html[ \t]*(?:\r?\n|$)`)
)

const fence = "```"

// Sanitize strips markdown code-fence wrappers and echoed language tags from
// a raw model reply. It never fails; a reply without fences only gets trimmed.
func Sanitize(raw string) string {
	s := strings.TrimLeft(raw, " \t\r\n")
	s = leadingFenceRe.ReplaceAllString(s, "")
	s = openFenceRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, fence, "")
	s = echoedLangLineRe.ReplaceAllString(strings.TrimLeft(s, " \t\r\n"), "")
	return strings.TrimSpace(s)
}
