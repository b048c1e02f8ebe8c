package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(contents ...string) string {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type choice struct {
		Index        int    `json:"index"`
		FinishReason string `json:"finish_reason"`
		Message      msg    `json:"message"`
	}
	choices := []choice{}
	for i, c := range contents {
		choices = append(choices, choice{Index: i, FinishReason: "stop", Message: msg{Role: "assistant", Content: c}})
	}
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": choices,
	})
	return string(b)
}

func TestCompatLLMSendsSessionCredential(t *testing.T) {
	var got chatRequest
	var cookie, auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		cookie = r.Header.Get("Cookie")
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("<html></html>"))
	}))
	defer srv.Close()

	llm, err := NewCompatLLM(&LLMSettings{
		Endpoint:      srv.URL + "/openai/v1/chat/completions",
		SessionCookie: "session=abc",
	}, srv.Client())
	require.NoError(t, err)

	out, err := llm.Complete(context.Background(), BuildRectificationPrompt("<p>", "fix"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", out)

	assert.Equal(t, "/openai/v1/chat/completions", path)
	assert.Equal(t, "session=abc", cookie)
	assert.Empty(t, auth, "no API key is sent to the gateway")
	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Existing code:\n<p>", got.Messages[1].Content)
	assert.Equal(t, "Human feedback:\nfix", got.Messages[2].Content)
	assert.InDelta(t, DefaultRectifyTemperature, got.Temperature, 0.001)
}

func TestCompatLLMBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("<html></html>"))
	}))
	defer srv.Close()

	llm, err := NewCompatLLM(&LLMSettings{Endpoint: srv.URL + "/v1/chat/completions", SessionToken: "tok"}, nil)
	require.NoError(t, err)
	_, err = llm.Complete(context.Background(), Prompt{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
}

func TestCompatLLMFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"empty choices", http.StatusOK, `{"choices": []}`, "empty choices"},
		{"empty content", http.StatusOK, completionBody("  "), "no code received"},
		{"server error", http.StatusInternalServerError, `{"error": {"message": "boom"}}`, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			llm, err := NewCompatLLM(&LLMSettings{Endpoint: srv.URL + "/v1/chat/completions"}, srv.Client())
			require.NoError(t, err)
			_, err = llm.Complete(context.Background(), Prompt{System: "s", User: "u"})
			require.ErrorIs(t, err, ErrBackend)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNewCompatLLMRequiresEndpoint(t *testing.T) {
	_, err := NewCompatLLM(&LLMSettings{}, nil)
	assert.Error(t, err)
	_, err = NewCompatLLM(nil, nil)
	assert.Error(t, err)
}

func TestOpenAILLMComplete(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("```html\n<html></html>\n```"))
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	out, err := llm.Complete(context.Background(), BuildGenerationPrompt(Spec{Description: "todo"}, DefaultEndpoint, DefaultModel))
	require.NoError(t, err)
	assert.Equal(t, "```html\n<html></html>\n```", out)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.InDelta(t, DefaultTemperature, got.Temperature, 0.001)
}

func TestOpenAILLMEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody())
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)
	_, err = llm.Complete(context.Background(), Prompt{System: "s", User: "u"})
	require.ErrorIs(t, err, ErrBackend)
	assert.Contains(t, err.Error(), "invalid response from API")
}

func TestNewOpenAILLMFromConfigValidation(t *testing.T) {
	_, err := NewOpenAILLMFromConfig(nil)
	assert.Error(t, err)
	_, err = NewOpenAILLMFromConfig(&LLMSettings{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenAILLMFromConfig(&LLMSettings{APIKey: "k"})
	assert.Error(t, err)
}

func TestMockLLMRoundTrip(t *testing.T) {
	agent, err := NewAgent(MockLLM{}, DefaultEndpointMap())
	require.NoError(t, err)
	s := NewSession("mock", agent)

	doc, err := s.Generate(context.Background(), "a <b>bold</b> app")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.HTML, "<!DOCTYPE html>\n<html lang=\"en\">"))
	assert.Contains(t, doc.HTML, "a &lt;b&gt;bold&lt;/b&gt; app")
	assert.Equal(t, "Mock App", doc.Title)

	doc, err = s.Rectify(context.Background(), "make it -- blue")
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "<!-- revised: make it - - blue -->")
	assert.Equal(t, uint64(2), doc.Version)
}
