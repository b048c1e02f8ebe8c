package generator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// CompatLLM talks to an OpenAI-compatible gateway that authenticates the
// caller's session instead of an API key.
type CompatLLM struct {
	Model  string
	client *goopenai.Client
}

// NewCompatLLM builds a gateway client. The endpoint is the full
// chat-completion URL; the SDK appends the path itself.
func NewCompatLLM(cfg *LLMSettings, httpClient *http.Client) (*CompatLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("llm endpoint is required for an OpenAI-compatible gateway")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *httpClient
	hc.Transport = &sessionTransport{
		base:   base,
		cookie: cfg.SessionCookie,
		token:  cfg.SessionToken,
	}

	conf := goopenai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = strings.TrimSuffix(strings.TrimRight(cfg.Endpoint, "/"), "/chat/completions")
	conf.HTTPClient = &hc
	return &CompatLLM{Model: model, client: goopenai.NewClientWithConfig(conf)}, nil
}

func (c *CompatLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	msgs := []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System},
	}
	for _, h := range prompt.History {
		role := goopenai.ChatMessageRoleUser
		if h.Role == "assistant" {
			role = goopenai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: role, Content: h.Content})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt.User})

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    msgs,
		Temperature: float32(prompt.Temperature),
	})
	if err != nil {
		return "", backendErr("gateway", err)
	}
	contents := make([]string, 0, len(resp.Choices))
	for _, ch := range resp.Choices {
		contents = append(contents, ch.Message.Content)
	}
	return firstContent("gateway", contents)
}

// sessionTransport attaches the ambient session credential to every request.
type sessionTransport struct {
	base   http.RoundTripper
	cookie string
	token  string
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.cookie == "" && t.token == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	if t.cookie != "" {
		r.Header.Add("Cookie", t.cookie)
	}
	if t.token != "" && r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(r)
}
