package anthropic

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
)

func TestModel_ToolUseResponse(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-20241022",
			"content": [
				{"type": "tool_use", "id": "toolu_1", "name": "TravelWeather-travel_weather", "input": {"city": "Madrid", "month": "January"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`)
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.BaseURL = srv.URL
	})

	resp, err := model.Collect(t.Context(), m, model.Request{
		Messages: []core.Content{
			core.NewTextContent(core.RoleSystem, "You are Frederick."),
			core.NewTextContent(core.RoleUser, "How warm is Madrid in January?"),
		},
		Tools: []model.ToolDefinition{model.NewFunctionTool(model.FunctionDefinition{
			Name:        "TravelWeather-travel_weather",
			Description: "Get the average temperature",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"city": map[string]any{"type": "string"}},
				"required":   []string{"city"},
			},
		})},
		Settings: model.Settings{MaxTokens: 2000, Temperature: 0.7, TopP: 0.8, FunctionCall: model.FunctionCallAuto},
	})
	require.NoError(t, err)

	calls := resp.Content.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "toolu_1", calls[0].ID)
	assert.JSONEq(t, `{"city":"Madrid","month":"January"}`, calls[0].Arguments)
	assert.Equal(t, "tool_use", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.EqualValues(t, 2000, body["max_tokens"])
	assert.InDelta(t, 0.8, body["top_p"], 1e-9)
	require.Len(t, body["tools"], 1)
	require.Len(t, body["system"], 1)
	require.Len(t, body["messages"], 1)
}

func TestModel_StreamingUnsupported(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })

	_, err := model.Collect(t.Context(), m, model.Request{
		Messages: []core.Content{core.NewTextContent(core.RoleUser, "hi")},
		Stream:   true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic")
}

func TestBuildParams(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test"; o.MaxTokens = 512 })

	t.Run("defaults max tokens and skips tools when disabled", func(t *testing.T) {
		params := m.buildParams(model.Request{
			Messages: []core.Content{core.NewTextContent(core.RoleUser, "hi")},
			Tools:    []model.ToolDefinition{model.NewFunctionTool(model.FunctionDefinition{Name: "x"})},
		})
		assert.EqualValues(t, 512, params.MaxTokens)
		assert.Empty(t, params.Tools)
	})

	t.Run("tool results follow the assistant turn", func(t *testing.T) {
		call := core.FunctionCall{ID: "toolu_1", Name: "weather", Arguments: `{"city":"Madrid"}`}
		params := m.buildParams(model.Request{
			Messages: []core.Content{
				core.NewTextContent(core.RoleUser, "weather?"),
				{Role: core.RoleAssistant, Parts: []core.Part{core.FunctionCallPart{FunctionCall: call}}},
				{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{
					FunctionResponse: core.FunctionResponse{ID: "toolu_1", Name: "weather", Response: "50"},
				}}},
			},
			Settings: model.Settings{StopSequences: []string{"###"}},
		})
		require.Len(t, params.Messages, 3)
		assert.Equal(t, []string{"###"}, params.StopSequences)
	})
}

func TestBuildParams_ToolErrorsAndMergedTurns(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })
	call := core.FunctionCall{ID: "toolu_1", Name: "travel_weather", Arguments: `{"city":"Atlantis"}`}

	params := m.buildParams(model.Request{
		Messages: []core.Content{
			core.NewTextContent(core.RoleSystem, "You are Frederick."),
			core.NewTextContent(core.RoleUser, "Hi there, who are you?"),
			core.NewTextContent(core.RoleUser, "How warm is Atlantis?"),
			{Role: core.RoleAssistant, Parts: []core.Part{core.FunctionCallPart{FunctionCall: call}}},
			{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{
				FunctionResponse: core.FunctionResponse{ID: "toolu_1", Name: "travel_weather", Error: "unknown city"},
			}}},
		},
		Tools:    []model.ToolDefinition{model.NewFunctionTool(model.FunctionDefinition{Name: "travel_weather"})},
		Settings: model.Settings{FunctionCall: "travel_weather"},
	})

	require.Len(t, params.Messages, 3)
	assert.Len(t, params.Messages[0].Content, 2)

	raw, err := json.Marshal(params)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	msgs := body["messages"].([]any)
	result := msgs[2].(map[string]any)["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", result["type"])
	assert.Equal(t, true, result["is_error"])

	choice := body["tool_choice"].(map[string]any)
	assert.Equal(t, "tool", choice["type"])
	assert.Equal(t, "travel_weather", choice["name"])
}
