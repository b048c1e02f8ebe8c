package generator

import (
	"context"
	"errors"
)

// Agent 负责调用模型并把回复整理成可发布的 HTML 文档。
type Agent struct {
	llm      LLMClient
	pipeline *Pipeline
	endpoint string
	model    string

	temperature        float64
	rectifyTemperature float64
}

// AgentOption customizes an Agent.
type AgentOption func(*Agent)

// WithModel sets the model named in the sample gateway call.
func WithModel(model string) AgentOption {
	return func(a *Agent) { a.model = model }
}

// WithTemperatures overrides the generation and rectification temperatures.
// Zero keeps the default.
func WithTemperatures(generate, rectify float64) AgentOption {
	return func(a *Agent) {
		if generate > 0 {
			a.temperature = generate
		}
		if rectify > 0 {
			a.rectifyTemperature = rectify
		}
	}
}

// WithRepairer swaps the structure repairer.
func WithRepairer(r Repairer) AgentOption {
	return func(a *Agent) { a.pipeline.Repairer = r }
}

func NewAgent(llm LLMClient, endpoints EndpointMap, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if endpoints.Endpoint == "" {
		endpoints.Endpoint = DefaultEndpoint
	}
	a := &Agent{
		llm:                llm,
		pipeline:           NewPipeline(endpoints),
		endpoint:           endpoints.Endpoint,
		model:              DefaultModel,
		temperature:        DefaultTemperature,
		rectifyTemperature: DefaultRectifyTemperature,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Generate produces a first version from an app description.
func (a *Agent) Generate(ctx context.Context, spec Spec) (string, error) {
	prompt := BuildGenerationPrompt(spec, a.endpoint, a.model)
	prompt.Temperature = a.temperature

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return a.pipeline.PostProcess(raw, true)
}

// Rectify revises existing according to human feedback. The existing code
// already targets the canonical endpoint, so placeholders are not rewritten.
func (a *Agent) Rectify(ctx context.Context, existing, feedback string) (string, error) {
	prompt := BuildRectificationPrompt(existing, feedback)
	prompt.Temperature = a.rectifyTemperature

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return a.pipeline.PostProcess(raw, false)
}
