package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSpec(t *testing.T) {
	tests := []struct {
		desc     string
		needsLLM bool
	}{
		{"Create a PDF summarizer app", true},
		{"an AI writing assistant", true},
		{"chatbot for support", true},
		{"uses GPT to answer", true},
		{"a todo list", false},
		{"said the raven", false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			spec := ExtractSpec("  " + tt.desc + "\n")
			assert.Equal(t, tt.desc, spec.Description)
			assert.Equal(t, tt.needsLLM, spec.NeedsLLM)
		})
	}
}

func TestBuildGenerationPrompt(t *testing.T) {
	p := BuildGenerationPrompt(Spec{Description: "a todo list"}, DefaultEndpoint, DefaultModel)
	assert.Contains(t, p.System, "Return ONLY pure HTML code")
	assert.NotContains(t, p.System, DefaultEndpoint)
	assert.Equal(t, "Create a complete, working single HTML file for: a todo list", p.User)
	assert.Empty(t, p.History)

	p = BuildGenerationPrompt(Spec{Description: "summarizer", NeedsLLM: true}, "https://gw.example/v1/chat/completions", "m1")
	assert.Contains(t, p.System, `fetch("https://gw.example/v1/chat/completions"`)
	assert.Contains(t, p.System, `model: "m1"`)
	assert.Contains(t, p.System, `credentials: "include"`)
}

func TestBuildRectificationPrompt(t *testing.T) {
	p := BuildRectificationPrompt("<html></html>", "fix the button")
	assert.Contains(t, p.System, "Return only the full improved HTML")
	assert.Equal(t, []Message{{Role: "user", Content: "Existing code:\n<html></html>"}}, p.History)
	assert.Equal(t, "Human feedback:\nfix the button", p.User)
}
