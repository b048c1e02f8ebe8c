package generator

import (
	"context"
	"html"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// Replies come back fenced, like a real model's often do.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("```html\n")
	if len(prompt.History) > 0 {
		existing := strings.TrimPrefix(prompt.History[0].Content, "Existing code:\n")
		feedback := strings.TrimPrefix(prompt.User, "Human feedback:\n")
		note := "<!-- revised: " + strings.ReplaceAll(feedback, "--", "- -") + " -->\n"
		if i := strings.Index(strings.ToLower(existing), "</body>"); i >= 0 {
			existing = existing[:i] + note + existing[i:]
		} else {
			existing += "\n" + note
		}
		sb.WriteString(existing)
	} else {
		desc := html.EscapeString(strings.TrimPrefix(prompt.User, "Create a complete, working single HTML file for: "))
		sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
		sb.WriteString("<title>Mock App</title>\n<style>body{font-family:sans-serif;margin:2rem}</style>\n")
		sb.WriteString("</head>\n<body>\n<h1>Mock App</h1>\n<p>")
		sb.WriteString(desc)
		sb.WriteString("</p>\n<script>\nconsole.log('mock app ready');\n</script>\n</body>\n</html>")
	}
	sb.WriteString("\n```\n")
	return sb.String(), nil
}
