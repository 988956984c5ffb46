package skill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semkernel/core"
)

func newContext(vars map[string]string) *core.Context {
	return core.NewContext(context.Background(), core.VariablesFromMap(vars), nil)
}

func weatherFunction() *NativeFunction {
	return NewNativeFunction(
		"travel_weather",
		"Takes a city and a month and returns the average temperature for that month.",
		[]Parameter{
			{Name: "city", Description: "The city", Required: true},
			{Name: "month", Description: "The month", DefaultValue: "June"},
		},
		func(ctx *core.Context) (string, error) {
			city, _ := ctx.Variables.Get("city")
			month, _ := ctx.Variables.Get("month")
			return "The average temperature in " + city + " in " + month + " is 75 degrees.", nil
		},
	).InSkill("TravelWeather")
}

func TestNativeFunction_Invoke(t *testing.T) {
	fn := weatherFunction()
	c := newContext(map[string]string{"city": "Seattle"})

	require.NoError(t, fn.Invoke(c))
	assert.Equal(t, "The average temperature in Seattle in June is 75 degrees.", c.Result())
	assert.False(t, c.ErrorOccurred())
	assert.Equal(t, "TravelWeather", fn.SkillName())
	assert.False(t, fn.IsSemantic())
}

func TestNativeFunction_MissingRequired(t *testing.T) {
	c := newContext(nil)

	err := weatherFunction().Invoke(c)

	var fnErr *FunctionError
	require.ErrorAs(t, err, &fnErr)
	assert.Equal(t, CodeValidation, fnErr.Code)
	assert.Contains(t, fnErr.Message, "city")
	assert.True(t, c.ErrorOccurred())
	assert.Equal(t, err.Error(), c.LastErrorDescription())
}

func TestNativeFunction_ExecutionError(t *testing.T) {
	boom := errors.New("service unavailable")
	fn := NewNativeFunction("fail", "always fails", nil, func(*core.Context) (string, error) {
		return "", boom
	})
	c := newContext(map[string]string{"input": "unchanged"})

	err := fn.Invoke(c)

	var fnErr *FunctionError
	require.ErrorAs(t, err, &fnErr)
	assert.Equal(t, CodeExecution, fnErr.Code)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "unchanged", c.Result())
	assert.ErrorIs(t, c.LastError(), boom)
}

func TestNativeFunction_ForwardsFunctionError(t *testing.T) {
	custom := &FunctionError{Function: "lookup", Message: "no such city", Code: "NO_CITY"}
	fn := NewNativeFunction("lookup", "", nil, func(*core.Context) (string, error) {
		return "", custom
	})

	err := fn.Invoke(newContext(nil))
	assert.Same(t, custom, err)
}

func TestNewNativeFunctionFromStruct(t *testing.T) {
	type args struct {
		City  string `json:"city" description:"The city"`
		Month string `json:"month"`
		Unit  string `json:"unit,omitempty"`
		Scale string `json:"scale" default:"fahrenheit"`
	}
	fn := NewNativeFunctionFromStruct("weather", "weather lookup", args{}, func(c *core.Context) (string, error) {
		scale, _ := c.Variables.Get("scale")
		return scale, nil
	})

	params := fn.Parameters()
	require.Len(t, params, 4)
	assert.Equal(t, Parameter{Name: "city", Description: "The city", Type: "string", Required: true}, params[0])
	assert.Equal(t, "month", params[1].Name)
	assert.True(t, params[1].Required)
	assert.Equal(t, Parameter{Name: "scale", Type: "string", DefaultValue: "fahrenheit"}, params[2])
	assert.Equal(t, "unit", params[3].Name)
	assert.False(t, params[3].Required)

	c := newContext(map[string]string{"city": "Porto", "month": "May"})
	require.NoError(t, fn.Invoke(c))
	assert.Equal(t, "fahrenheit", c.Result())

	def := ToolDefinition(fn.InSkill("Weather"))
	assert.Equal(t, "function", def.Type)
	assert.Equal(t, "Weather-weather", def.Function.Name)
	assert.Equal(t, fn.Schema(), def.Function.Parameters)
}

func TestParametersSchema(t *testing.T) {
	schema := ParametersSchema([]Parameter{
		{Name: "city", Description: "The city", Required: true},
		{Name: "count", Type: "integer"},
	})

	props := schema["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "description": "The city"}, props["city"])
	assert.Equal(t, map[string]any{"type": "integer"}, props["count"])
	assert.Equal(t, []string{"city"}, schema["required"])
}

func TestFunctionError(t *testing.T) {
	err := notFound("WinePlugin", "Pairing")
	assert.Equal(t, "function error [NOT_FOUND] in WinePlugin.Pairing: function not registered", err.Error())
	assert.ErrorIs(t, err, ErrFunctionNotFound)

	plain := &FunctionError{Function: "x", Message: "bad"}
	assert.Equal(t, "function error in x: bad", plain.Error())
}
