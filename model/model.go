package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/semkernel/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// NewFunctionTool wraps a FunctionDefinition as a "function" ToolDefinition.
func NewFunctionTool(def FunctionDefinition) ToolDefinition {
	return ToolDefinition{Type: "function", Function: def}
}

// Function call modes for Settings.FunctionCall. Any other non-empty value
// names the function the model is forced to call.
const (
	FunctionCallNone = "none"
	FunctionCallAuto = "auto"
)

// Settings carries the completion parameters of a request.
// Zero values mean "provider default" except where noted.
type Settings struct {
	MaxTokens        int64    `json:"max_tokens,omitempty"`
	Temperature      float64  `json:"temperature"`
	TopP             float64  `json:"top_p,omitempty"`
	PresencePenalty  float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64  `json:"frequency_penalty,omitempty"`
	StopSequences    []string `json:"stop_sequences,omitempty"`
	FunctionCall     string   `json:"function_call,omitempty"`
}

// FunctionCallingEnabled reports whether tool definitions should be offered.
func (s Settings) FunctionCallingEnabled() bool {
	return s.FunctionCall != "" && s.FunctionCall != FunctionCallNone
}

// Request captures the normalized chat input.
type Request struct {
	Messages []core.Content   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
	Settings Settings         `json:"settings"`
	Stream   bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "azure", "anthropic", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the chat service interface semantic functions are bound to.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrNoResponse is returned by Collect when the model closed its stream
// without a final response.
var ErrNoResponse = errors.New("model returned no final response")

// Collect drains a Generate call and returns the final (non-partial) response.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final    Response
		gotFinal bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				final = r
				gotFinal = true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, fmt.Errorf("%s: %w", m.Info().Provider, err)
			}
		}
	}
	if !gotFinal {
		return Response{}, ErrNoResponse
	}
	return final, nil
}
