package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/internal/util"
	"github.com/hupe1980/semkernel/model"
)

// buildParams maps a request onto MessageNewParams. System contents go to
// the system field; tool results are sent in a user turn right after the
// assistant turn that requested them.
func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	settings := req.Settings
	maxTokens := settings.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.opts.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    toMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(settings.Temperature),
		System:      systemBlocks(req.Messages),
	}
	if settings.TopP > 0 {
		params.TopP = anthropic.Float(settings.TopP)
	}
	if len(settings.StopSequences) > 0 {
		params.StopSequences = settings.StopSequences
	}
	if len(req.Tools) > 0 && settings.FunctionCallingEnabled() {
		params.Tools = toTools(req.Tools)
		params.ToolChoice = toolChoice(settings.FunctionCall)
	}
	return params
}

func toolChoice(mode string) anthropic.ToolChoiceUnionParam {
	if mode == model.FunctionCallAuto {
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
	return anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: mode}}
}

func systemBlocks(contents []core.Content) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, c := range contents {
		if c.Role != core.RoleSystem {
			continue
		}
		if text := c.Text(); text != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: text})
		}
	}
	return blocks
}

type toolResult struct {
	content string
	isError bool
}

// toMessages converts the chat history. Consecutive turns of the same role
// are merged since the Messages API expects user and assistant turns to
// alternate.
func toMessages(contents []core.Content) []anthropic.MessageParam {
	results := map[string]toolResult{}
	for _, c := range contents {
		for _, fr := range c.FunctionResponses() {
			if fr.ID == "" {
				continue
			}
			if fr.Error != "" {
				results[fr.ID] = toolResult{content: fr.Error, isError: true}
			} else {
				results[fr.ID] = toolResult{content: fr.Response}
			}
		}
	}

	var msgs []anthropic.MessageParam
	add := func(role anthropic.MessageParamRole, blocks []anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(msgs); n > 0 && msgs[n-1].Role == role {
			msgs[n-1].Content = append(msgs[n-1].Content, blocks...)
			return
		}
		msgs = append(msgs, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, c := range contents {
		switch c.Role {
		case core.RoleSystem, core.RoleTool:
		case core.RoleAssistant:
			blocks, ids := assistantBlocks(c.Parts)
			add(anthropic.MessageParamRoleAssistant, blocks)

			var answers []anthropic.ContentBlockParamUnion
			for _, id := range ids {
				if r, ok := results[id]; ok {
					answers = append(answers, anthropic.NewToolResultBlock(id, r.content, r.isError))
				}
			}
			add(anthropic.MessageParamRoleUser, answers)
		default:
			var blocks []anthropic.ContentBlockParamUnion
			for _, p := range c.Parts {
				if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(tp.Text))
				}
			}
			add(anthropic.MessageParamRoleUser, blocks)
		}
	}
	return msgs
}

// assistantBlocks returns the blocks of an assistant turn and the IDs of the
// tool calls it makes.
func assistantBlocks(parts []core.Part) ([]anthropic.ContentBlockParamUnion, []string) {
	var (
		blocks []anthropic.ContentBlockParamUnion
		ids    []string
	)
	for _, p := range parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			call := part.FunctionCall
			blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, toolInput(call.Arguments), call.Name))
			ids = append(ids, call.ID)
		}
	}
	return blocks, ids
}

func toTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if params := tool.Function.Parameters; params != nil {
			schema.Properties = params["properties"]
			schema.Required = util.RequiredFields(params)
		}

		t := anthropic.ToolUnionParamOfTool(schema, tool.Function.Name)
		if tool.Function.Description != "" && t.OfTool != nil {
			t.OfTool.Description = anthropic.String(tool.Function.Description)
		}
		out = append(out, t)
	}
	return out
}
