package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toolCallCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-35-turbo",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": null,
      "tool_calls": [{
        "id": "call_1",
        "type": "function",
        "function": {"name": "travel_weather", "arguments": "{\"city\":\"Madrid\",\"month\":\"January\"}"}
      }]
    }
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

type capturedRequest struct {
	path   string
	query  string
	apiKey string
	auth   string
	body   map[string]any
}

func newTestServer(t *testing.T, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured.path = r.URL.Path
		captured.query = r.URL.Query().Get("api-version")
		captured.apiKey = r.Header.Get("api-key")
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.Unmarshal(raw, &captured.body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func weatherRequest() model.Request {
	return model.Request{
		Messages: []core.Content{
			core.NewTextContent(core.RoleSystem, "You are Frederick."),
			core.NewTextContent(core.RoleUser, "Average temperature in Madrid in January?"),
		},
		Tools: []model.ToolDefinition{model.NewFunctionTool(model.FunctionDefinition{
			Name:        "travel_weather",
			Description: "Finds the average temperature for a city in a month.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"city":  map[string]any{"type": "string"},
					"month": map[string]any{"type": "string"},
				},
				"required": []string{"city", "month"},
			},
		})},
		Settings: model.Settings{MaxTokens: 2000, Temperature: 0.7, TopP: 0.8, FunctionCall: model.FunctionCallAuto, StopSequences: []string{"###"}},
	}
}

func TestAzureModel_FunctionCall(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	var captured capturedRequest
	srv := newTestServer(t, toolCallCompletion, &captured)

	m := NewAzureModel("gpt35", srv.URL, "secret", "")
	resp, err := model.Collect(context.Background(), m, weatherRequest())
	require.NoError(t, err)

	assert.Equal(t, "/openai/deployments/gpt35/chat/completions", captured.path)
	assert.Equal(t, DefaultAzureAPIVersion, captured.query)
	assert.Equal(t, "secret", captured.apiKey)
	assert.Empty(t, captured.auth)

	assert.Equal(t, "gpt35", captured.body["model"])
	assert.Equal(t, 2000.0, captured.body["max_tokens"])
	assert.Equal(t, 0.8, captured.body["top_p"])
	assert.Equal(t, "auto", captured.body["tool_choice"])
	assert.Equal(t, []any{"###"}, captured.body["stop"])
	assert.Len(t, captured.body["tools"], 1)
	assert.Len(t, captured.body["messages"], 2)

	calls := resp.Content.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "travel_weather", calls[0].Name)
	assert.JSONEq(t, `{"city":"Madrid","month":"January"}`, calls[0].Arguments)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, "azure", m.Info().Provider)
	assert.Equal(t, "gpt35", m.Info().Name)
}

func TestModel_ToolsOmittedWhenFunctionCallingDisabled(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello, I am Frederick."}}]}`, &captured)

	client := openai.NewClient(option.WithBaseURL(srv.URL+"/"), option.WithAPIKey("k"), option.WithMaxRetries(0))
	m := NewModelFromClient(&client, func(o *Options) { o.Model = "gpt-4o-mini" })

	req := weatherRequest()
	req.Settings.FunctionCall = ""
	resp, err := model.Collect(context.Background(), m, req)
	require.NoError(t, err)

	assert.Equal(t, "Hello, I am Frederick.", resp.Content.Text())
	assert.NotContains(t, captured.body, "tools")
	assert.NotContains(t, captured.body, "tool_choice")
	assert.Equal(t, []any{"###"}, captured.body["stop"])
	assert.Equal(t, "Bearer k", captured.auth)
}

func TestBuildParams_StopSequences(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "k" })

	req := weatherRequest()
	params := m.buildParams(req)
	assert.Equal(t, []string{"###"}, params.Stop.OfStringArray)

	req.Settings.StopSequences = nil
	params = m.buildParams(req)
	assert.Nil(t, params.Stop.OfStringArray)
	assert.False(t, params.Stop.OfString.Valid())
}

func TestToMessages_ToolResponsesFollowCalls(t *testing.T) {
	req := model.Request{Messages: []core.Content{
		core.NewTextContent(core.RoleUser, "weather?"),
		{Role: core.RoleAssistant, Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "c1", Name: "travel_weather", Arguments: "{}"}}}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "c1", Name: "travel_weather", Response: "48 degrees"}}}},
	}}
	msgs := toMessages(req.Messages)
	require.Len(t, msgs, 3)
	assert.NotNil(t, msgs[1].OfAssistant)
	require.NotNil(t, msgs[2].OfTool)
	assert.Equal(t, "c1", msgs[2].OfTool.ToolCallID)
}

func TestToolChoice_Named(t *testing.T) {
	tc := toolChoice("travel_weather")
	require.NotNil(t, tc.OfChatCompletionNamedToolChoice)
	assert.Equal(t, "travel_weather", tc.OfChatCompletionNamedToolChoice.Function.Name)
}

func TestToMessages_ToolErrorAndOrphanResult(t *testing.T) {
	msgs := toMessages([]core.Content{
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "orphan", Name: "travel_weather", Response: "late"}}}},
		{Role: core.RoleAssistant, Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "c1", Name: "travel_weather", Arguments: "{}"}}}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "c1", Name: "travel_weather", Error: "city not found"}}}},
	})
	require.Len(t, msgs, 3)
	require.NotNil(t, msgs[1].OfTool)
	assert.Equal(t, "c1", msgs[1].OfTool.ToolCallID)
	assert.Equal(t, `{"error":"city not found"}`, msgs[1].OfTool.Content.OfString.Value)
	require.NotNil(t, msgs[2].OfTool)
	assert.Equal(t, "orphan", msgs[2].OfTool.ToolCallID)
}

func TestAccumulator_AssemblesToolCallDeltas(t *testing.T) {
	chunks := []string{
		`{"index":0,"delta":{"content":"Checking"}}`,
		`{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"travel_weather","arguments":"{\"city\":"}}]}}`,
		`{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Madrid\"}"}}]}}`,
		`{"index":0,"delta":{},"finish_reason":"tool_calls"}`,
	}

	var acc accumulator
	var partials int
	for _, raw := range chunks {
		var choice openai.ChatCompletionChunkChoice
		require.NoError(t, json.Unmarshal([]byte(raw), &choice))
		partials += len(acc.add(choice))
	}
	assert.Equal(t, 3, partials)

	final := acc.final("tool_calls")
	assert.False(t, final.Partial)
	assert.Equal(t, "tool_calls", final.FinishReason)
	assert.Equal(t, "Checking", final.Content.Text())
	calls := final.Content.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "travel_weather", calls[0].Name)
	assert.Equal(t, `{"city":"Madrid"}`, calls[0].Arguments)
}
