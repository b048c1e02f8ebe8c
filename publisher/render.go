package publisher

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"ai_app_generator/generator"
)

var codeRenderer = goldmark.New(
	goldmark.WithExtensions(
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderCode renders a document's source as a syntax-highlighted HTML page
// for the code panel. The source is shown as text, never executed.
func RenderCode(title, source string) (string, error) {
	fence := strings.Repeat("`", max(3, longestRun(source, '`')+1))
	md := fence + "html\n" + source + "\n" + fence + "\n"

	var body bytes.Buffer
	if err := codeRenderer.Convert([]byte(md), &body); err != nil {
		return "", err
	}
	return page(title, body.String()), nil
}

// RenderChangelog renders a session's accepted turns as an HTML page. User
// input is Markdown-escaped and raw HTML is never passed through.
func RenderChangelog(title string, turns []generator.Turn) (string, error) {
	var sb strings.Builder
	sb.WriteString("# " + escapeMarkdown(title) + "\n\n")
	if len(turns) == 0 {
		sb.WriteString("_No versions yet._\n")
	}
	for _, t := range turns {
		label := "Generated"
		if t.Op == generator.OpRectify {
			label = "Rectified"
		}
		sb.WriteString(fmt.Sprintf("## v%d: %s\n\n", t.Version, label))
		sb.WriteString(fmt.Sprintf("*%s*", t.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST")))
		if t.Title != "" {
			sb.WriteString(" · " + escapeMarkdown(t.Title))
		}
		sb.WriteString("\n\n")
		for _, line := range strings.Split(strings.TrimSpace(t.Input), "\n") {
			sb.WriteString("> " + escapeMarkdown(line) + "\n")
		}
		sb.WriteString("\n")
	}

	body, err := mdToHTML(sb.String())
	if err != nil {
		return "", err
	}
	return page(title, body), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"#", `\#`, "<", `\<`, ">", `\>`, "|", `\|`, "!", `\!`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			best = max(best, cur)
			continue
		}
		cur = 0
	}
	return best
}

func page(title, body string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n<title>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title>\n<style>body{font-family:system-ui,sans-serif;margin:1.5rem;max-width:60rem}pre{padding:1rem;overflow:auto;border-radius:6px}</style>\n</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}
