package generator

import (
	"fmt"
	"regexp"
	"strings"
)

// Prompt is the message set sent to the backend.
type Prompt struct {
	System      string
	User        string
	History     []Message
	Temperature float64
}

// Message is a prior chat message placed between the system prompt and User.
type Message struct {
	Role    string
	Content string
}

const (
	DefaultTemperature        = 0.7
	DefaultRectifyTemperature = 0.6
)

var llmHintRe = regexp.MustCompile(`(?i)\b(ai|llm|gpt|chat\w*|summari[sz]\w*)\b`)

// ExtractSpec derives the prompt requirements from a free-text description.
func ExtractSpec(description string) Spec {
	d := strings.TrimSpace(description)
	return Spec{
		Description: d,
		NeedsLLM:    llmHintRe.MatchString(d),
	}
}

const generationRules = `You are an expert web developer. Generate complete, working HTML files with embedded CSS and JavaScript. Always include functional API integrations where needed.

CRITICAL REQUIREMENTS:
1. Return ONLY pure HTML code - no markdown, no explanations, no code blocks
2. Complete HTML structure with <!DOCTYPE html>
3. All CSS must be in <style> tags in the <head>
4. All JavaScript must be in <script> tags at the end of <body>
5. Must be fully functional and interactive
6. Modern, clean design with good UX
7. If the app needs an API (like PDF summarizer, weather app, etc.):
   - Include full working API integration code
   - For PDF: Use PDF.js from CDN: https://cdnjs.cloudflare.com/ajax/libs/pdf.js/3.11.174/pdf.min.js
   - For PDF: Extract text and send to API for real summarization
8. Include proper error handling and loading states
9. No external dependencies except CDN libraries where necessary

Follow this exact structure:

<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<!-- meta, css, cdns -->
</head>
<body>
<script>
</script>
</body>
</html>

Start directly with <!DOCTYPE html> and end with </html>.
`

const integrationTemplate = `
LLM API Details:

Use exactly this call whenever the application needs an LLM:

const response = await fetch(%q, {
  method: "POST",
  headers: { "Content-Type": "application/json" },
  credentials: "include",
  body: JSON.stringify({
    model: %q,
    messages: [{ role: "user", content: "What is 2 + 2" }],
  }),
});
await response.json()

Instructions:
1. Use only the fetch call above for LLM features.
2. Do not put any API key in the generated code. credentials: "include" sends the logged-in user's session automatically.
`

// BuildGenerationPrompt builds the first-version prompt. endpoint and model
// go into the sample call the generated app should copy.
func BuildGenerationPrompt(spec Spec, endpoint, model string) Prompt {
	var sb strings.Builder
	sb.WriteString(generationRules)
	if spec.NeedsLLM {
		sb.WriteString(fmt.Sprintf(integrationTemplate, endpoint, model))
	}
	return Prompt{
		System:      sb.String(),
		User:        fmt.Sprintf("Create a complete, working single HTML file for: %s", spec.Description),
		Temperature: DefaultTemperature,
	}
}

const rectifySystem = "You are an expert web developer. Based on the user's feedback, refine or fix the provided HTML code. Return only the full improved HTML."

// BuildRectificationPrompt embeds the current document verbatim, followed by
// the human feedback.
func BuildRectificationPrompt(existing, feedback string) Prompt {
	return Prompt{
		System: rectifySystem,
		History: []Message{
			{Role: "user", Content: "Existing code:\n" + existing},
		},
		User:        "Human feedback:\n" + feedback,
		Temperature: DefaultRectifyTemperature,
	}
}
