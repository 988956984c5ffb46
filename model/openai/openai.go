// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (including streaming + function/tool calling). The same
// adapter serves Azure OpenAI deployments through NewAzureModel. It adapts the
// kernel's normalized Request/Response structures into the SDK's message
// format and back.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI model adapter. Request settings (temperature,
// max tokens, ...) come from model.Settings; Options only holds defaults used
// when a request leaves them unset.
type Options struct {
	Model string
	// Provider is reported through Info ("openai" or "azure").
	Provider string
	// APIKey and BaseURL configure the client built by NewModel.
	APIKey  string
	BaseURL string
	// MaxTokens applies when the request's settings leave MaxTokens at zero.
	MaxTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// DefaultAzureAPIVersion is the Azure OpenAI API version with function calling support.
const DefaultAzureAPIVersion = "2023-07-01-preview"

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewAzureModel creates a model bound to an Azure OpenAI deployment. The
// deployment name doubles as the model, which the azure middleware turns into
// the /openai/deployments/{deployment} route.
func NewAzureModel(deployment, endpoint, apiKey, apiVersion string, optFns ...func(o *Options)) *Model {
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	client := openai.NewClient(
		azure.WithEndpoint(strings.TrimRight(endpoint, "/"), apiVersion),
		azure.WithAPIKey(apiKey),
		option.WithHeaderDel("authorization"),
	)
	fns := append([]func(o *Options){func(o *Options) {
		o.Model = deployment
		o.Provider = "azure"
	}}, optFns...)
	return NewModelFromClient(&client, fns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:     openai.ChatModelGPT4oMini,
		Provider:  "openai",
		MaxTokens: 256,
	}
}

// Generate sends the request. Streaming requests emit partial text and
// tool-call deltas followed by one final response; other requests emit only
// the final response.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)

		params := m.buildParams(req)
		if req.Stream {
			errCh <- m.stream(ctx, params, out)
			return
		}
		resp, err := m.complete(ctx, params)
		if err != nil {
			errCh <- err
			return
		}
		out <- resp
	}()
	return out, errCh
}

func (m *Model) stream(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
) error {
	s := m.client.Chat.Completions.NewStreaming(ctx, params)
	var acc accumulator
	for s.Next() {
		for _, choice := range s.Current().Choices {
			for _, partial := range acc.add(choice) {
				out <- partial
			}
			if choice.FinishReason != "" {
				out <- acc.final(choice.FinishReason)
			}
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("%s streaming error: %w", m.opts.Provider, err)
	}
	return nil
}

func (m *Model) complete(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (model.Response, error) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Response{}, fmt.Errorf("%s api error: %w", m.opts.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return model.Response{}, fmt.Errorf("%s api error: no choices returned", m.opts.Provider)
	}

	choice := resp.Choices[0]
	content := core.Content{Role: core.RoleAssistant}
	if choice.Message.Content != "" {
		content.Parts = append(content.Parts, core.TextPart{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		content.Parts = append(content.Parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}

	return model.Response{
		ID:           resp.ID,
		Content:      content,
		FinishReason: choice.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      m.opts.Provider,
		SupportsTools: true,
	}
}
