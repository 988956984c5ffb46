package openai

import (
	"slices"
	"strings"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
	"github.com/openai/openai-go"
)

// accumulator assembles streamed chunks into the final response. Tool calls
// arrive as deltas keyed by index: the first delta carries ID and name, the
// following ones append argument text.
type accumulator struct {
	text  strings.Builder
	calls map[int64]*core.FunctionCall
}

// add consumes one chunk choice and returns the partial responses it yields.
func (a *accumulator) add(choice openai.ChatCompletionChunkChoice) []model.Response {
	var partials []model.Response
	if delta := choice.Delta.Content; delta != "" {
		a.text.WriteString(delta)
		partials = append(partials, model.Response{
			Partial: true,
			Content: core.NewTextContent(core.RoleAssistant, delta),
		})
	}

	for _, tc := range choice.Delta.ToolCalls {
		if a.calls == nil {
			a.calls = map[int64]*core.FunctionCall{}
		}
		call, ok := a.calls[tc.Index]
		if !ok {
			call = &core.FunctionCall{}
			a.calls[tc.Index] = call
		}
		if tc.ID != "" {
			call.ID = tc.ID
		}
		if tc.Function.Name != "" {
			call.Name = tc.Function.Name
		}
		call.Arguments += tc.Function.Arguments

		partials = append(partials, model.Response{
			Partial: true,
			Content: core.Content{
				Role:  core.RoleAssistant,
				Parts: []core.Part{core.FunctionCallPart{FunctionCall: *call}},
			},
		})
	}
	return partials
}

// final returns the assembled response: the full text followed by the tool
// calls in index order.
func (a *accumulator) final(finishReason string) model.Response {
	content := core.Content{Role: core.RoleAssistant}
	if a.text.Len() > 0 {
		content.Parts = append(content.Parts, core.TextPart{Text: a.text.String()})
	}

	indexes := make([]int64, 0, len(a.calls))
	for idx := range a.calls {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)
	for _, idx := range indexes {
		content.Parts = append(content.Parts, core.FunctionCallPart{FunctionCall: *a.calls[idx]})
	}

	return model.Response{Content: content, FinishReason: finishReason}
}
