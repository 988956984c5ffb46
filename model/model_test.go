package model

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/semkernel/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func userRequest(text string) Request {
	return Request{Messages: []core.Content{
		core.NewTextContent(core.RoleSystem, "You are Frederick."),
		core.NewTextContent(core.RoleUser, text),
	}}
}

func TestMockModel_CannedAndDefault(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("White wine", "Pair it with fish.")

	resp, err := Collect(context.Background(), m, userRequest("White wine"))
	require.NoError(t, err)
	assert.Equal(t, "Pair it with fish.", resp.Content.Text())
	assert.Equal(t, "stop", resp.FinishReason)

	resp, err = Collect(context.Background(), m, userRequest("Red wine"))
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: Red wine", resp.Content.Text())
	assert.Len(t, m.Requests(), 2)
}

func TestMockModel_QueuedFunctionCall(t *testing.T) {
	m := NewMockModel("mock")
	m.QueueFunctionCall("travel_weather", `{"city":"Madrid","month":"January"}`)

	resp, err := Collect(context.Background(), m, userRequest("weather?"))
	require.NoError(t, err)
	calls := resp.Content.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "travel_weather", calls[0].Name)
	assert.NotEmpty(t, calls[0].ID)
	assert.Equal(t, "tool_calls", resp.FinishReason)

	// queue drained -> default reply
	resp, err = Collect(context.Background(), m, userRequest("again"))
	require.NoError(t, err)
	assert.Empty(t, resp.Content.FunctionCalls())
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("mock")
	m.QueueResponse("abc")

	req := userRequest("x")
	req.Stream = true
	respCh, errCh := m.Generate(context.Background(), req)

	var partials int
	var final Response
	for r := range respCh {
		if r.Partial {
			partials++
			continue
		}
		final = r
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, 3, partials)
	assert.Equal(t, "abc", final.Content.Text())
}

func TestCollect_Error(t *testing.T) {
	m := NewMockModel("mock")
	_, err := Collect(context.Background(), m, Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock")
}

func TestRateLimited(t *testing.T) {
	m := NewMockModel("mock")
	assert.Same(t, m, RateLimited(m, nil))

	limited := RateLimited(m, rate.NewLimiter(rate.Every(time.Hour), 1))
	assert.Equal(t, "mock", limited.Info().Name)

	_, err := Collect(context.Background(), limited, userRequest("first"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = Collect(ctx, limited, userRequest("second"))
	assert.Error(t, err)
}

func TestSettings_FunctionCallingEnabled(t *testing.T) {
	assert.False(t, Settings{}.FunctionCallingEnabled())
	assert.False(t, Settings{FunctionCall: FunctionCallNone}.FunctionCallingEnabled())
	assert.True(t, Settings{FunctionCall: FunctionCallAuto}.FunctionCallingEnabled())
	assert.True(t, Settings{FunctionCall: "travel_weather"}.FunctionCallingEnabled())
}
