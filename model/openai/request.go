package openai

import (
	"fmt"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
	"github.com/openai/openai-go"
)

// buildParams maps a request onto ChatCompletionNewParams.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	settings := req.Settings
	maxTokens := settings.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.opts.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages:    toMessages(req.Messages),
		Model:       m.opts.Model,
		Temperature: openai.Float(settings.Temperature),
		MaxTokens:   openai.Int(maxTokens),
	}
	if settings.TopP > 0 {
		params.TopP = openai.Float(settings.TopP)
	}
	if settings.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(settings.PresencePenalty)
	}
	if settings.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(settings.FrequencyPenalty)
	}

	if len(settings.StopSequences) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: settings.StopSequences}
	}

	if len(req.Tools) > 0 && settings.FunctionCallingEnabled() {
		params.Tools = toTools(req.Tools)
		params.ToolChoice = toolChoice(settings.FunctionCall)
	}
	return params
}

func toTools(defs []model.ToolDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		fn := openai.FunctionDefinitionParam{
			Name:       def.Function.Name,
			Parameters: def.Function.Parameters,
		}
		if def.Function.Description != "" {
			fn.Description = openai.String(def.Function.Description)
		}
		tools = append(tools, openai.ChatCompletionToolParam{Function: fn})
	}
	return tools
}

// toolChoice maps the function_call mode onto the SDK's tool_choice union.
func toolChoice(mode string) openai.ChatCompletionToolChoiceOptionUnionParam {
	if mode == model.FunctionCallAuto {
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(model.FunctionCallAuto)}
	}
	return openai.ChatCompletionToolChoiceOptionUnionParam{
		OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
			Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: mode},
		},
	}
}

// toMessages converts the chat history. Each tool result is placed right
// after the assistant message holding its call; results whose call is not
// in the history are appended at the end in their original order.
func toMessages(contents []core.Content) []openai.ChatCompletionMessageParamUnion {
	results := map[string]string{}
	var order []string
	for _, c := range contents {
		if c.Role != core.RoleTool {
			continue
		}
		for _, fr := range c.FunctionResponses() {
			if fr.ID == "" {
				continue
			}
			if _, seen := results[fr.ID]; seen {
				continue
			}
			results[fr.ID] = toolResultText(fr)
			order = append(order, fr.ID)
		}
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	for _, c := range contents {
		text := c.Text()
		switch c.Role {
		case core.RoleTool:
		case core.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(text))
		case core.RoleAssistant:
			calls := c.FunctionCalls()
			if len(calls) == 0 {
				msgs = append(msgs, openai.AssistantMessage(text))
				continue
			}
			assistant := &openai.ChatCompletionAssistantMessageParam{ToolCalls: toToolCalls(calls)}
			if text != "" {
				assistant.Content.OfString = openai.String(text)
			}
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
			for _, call := range calls {
				if res, ok := results[call.ID]; ok && call.ID != "" {
					msgs = append(msgs, openai.ToolMessage(res, call.ID))
					delete(results, call.ID)
				}
			}
		default:
			if text != "" {
				msgs = append(msgs, openai.UserMessage(text))
			}
		}
	}

	for _, id := range order {
		if res, ok := results[id]; ok {
			msgs = append(msgs, openai.ToolMessage(res, id))
		}
	}
	return msgs
}

func toToolCalls(calls []core.FunctionCall) []openai.ChatCompletionMessageToolCallParam {
	out := make([]openai.ChatCompletionMessageToolCallParam, 0, len(calls))
	for _, call := range calls {
		out = append(out, openai.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return out
}

func toolResultText(fr core.FunctionResponse) string {
	if fr.Error != "" {
		return fmt.Sprintf(`{"error":%q}`, fr.Error)
	}
	return fr.Response
}
