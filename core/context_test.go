package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	errors int
	last   []any
}

func (l *testLogger) Debug(_ string, args ...any) { l.last = args }
func (l *testLogger) Info(_ string, args ...any)  { l.last = args }
func (l *testLogger) Warn(_ string, args ...any)  { l.last = args }
func (l *testLogger) Error(_ string, args ...any) { l.errors++; l.last = args }

func TestNewContext_Defaults(t *testing.T) {
	c := NewContext(nil, nil, nil) //nolint:staticcheck // nil context is substituted
	require.NotNil(t, c.Variables)
	assert.NotEmpty(t, c.ID)
	assert.NotNil(t, c.Context())
	assert.NotNil(t, c.Logger())
	assert.False(t, c.ErrorOccurred())
}

func TestContext_LogTagsContextID(t *testing.T) {
	logger := &testLogger{}
	c := NewContext(context.Background(), nil, logger)

	c.LogDebug("step", "skill", "WinePlugin")
	assert.Equal(t, []any{"context_id", c.ID, "skill", "WinePlugin"}, logger.last)

	child := c.WithVariables(NewVariables("x"))
	child.LogWarn("child")
	assert.Equal(t, []any{"context_id", c.ID}, logger.last)

	c.Log().Info("via logger", "n", 1)
	assert.Equal(t, []any{"context_id", c.ID, "n", 1}, logger.last)
}

func TestContext_Fail(t *testing.T) {
	logger := &testLogger{}
	c := NewContext(context.Background(), NewVariables("in"), logger)

	cause := errors.New("boom")
	c.Fail("model call failed", cause)

	assert.True(t, c.ErrorOccurred())
	assert.Equal(t, "model call failed", c.LastErrorDescription())
	assert.ErrorIs(t, c.LastError(), cause)
	assert.Equal(t, 1, logger.errors)
	assert.Equal(t, []any{"context_id", c.ID, "error", "model call failed"}, logger.last)

	c.Reset()
	assert.False(t, c.ErrorOccurred())
	assert.NoError(t, c.LastError())
}

func TestContext_FailWithoutCause(t *testing.T) {
	c := NewContext(context.Background(), nil, nil)
	c.Fail("bad input", nil)
	require.Error(t, c.LastError())
	assert.Equal(t, "bad input", c.LastError().Error())
}

func TestContext_PopFunctionCall(t *testing.T) {
	c := NewContext(context.Background(), nil, nil)

	_, ok := c.PopFunctionCall()
	assert.False(t, ok)

	call := &FunctionCall{Name: "travel_weather", Arguments: `{"city":"Madrid"}`}
	c.SetObject(FunctionCallKey, call)
	c.SetObject(FunctionCallsKey, []FunctionCall{*call})

	got, ok := c.PopFunctionCall()
	require.True(t, ok)
	assert.Equal(t, "travel_weather", got.Name)

	_, ok = c.Object(FunctionCallKey)
	assert.False(t, ok)
	_, ok = c.Object(FunctionCallsKey)
	assert.False(t, ok)
}

func TestContext_WithVariables(t *testing.T) {
	parent := NewContext(context.Background(), NewVariables("a"), nil)
	parent.SetObject("k", 1)

	child := parent.WithVariables(NewVariables("b"))
	assert.Equal(t, parent.ID, child.ID)
	assert.Equal(t, "b", child.Result())
	_, ok := child.Object("k")
	assert.False(t, ok)
}
