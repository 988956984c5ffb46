package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semkernel/core"
)

func TestDispatcher_Dispatch(t *testing.T) {
	d := NewDispatcher(map[string]Function{"travel_weather": weatherFunction()})
	assert.Equal(t, []string{"travel_weather"}, d.Names())

	c := newContext(map[string]string{"input": "keep"})
	out, err := d.Dispatch(c, core.FunctionCall{Name: "travel_weather", Arguments: `{"city":"Madrid","month":"January"}`})
	require.NoError(t, err)
	assert.Equal(t, "The average temperature in Madrid in January is 75 degrees.", out)

	assert.Equal(t, "keep", c.Result(), "arguments are applied to a copy")
	_, ok := c.Variables.Get("city")
	assert.False(t, ok)
	assert.False(t, c.ErrorOccurred())
}

func TestDispatcher_FormatsNonStringArguments(t *testing.T) {
	fn := NewNativeFunction("repeat", "", []Parameter{{Name: "times", Type: "integer"}, {Name: "loud", Type: "boolean"}},
		func(c *core.Context) (string, error) {
			times, _ := c.Variables.Get("times")
			loud, _ := c.Variables.Get("loud")
			return times + "/" + loud, nil
		})
	d := NewDispatcher(map[string]Function{"Repeat": fn})

	out, err := d.Dispatch(newContext(nil), core.FunctionCall{Name: "repeat", Arguments: `{"times":3,"loud":true}`})
	require.NoError(t, err)
	assert.Equal(t, "3/true", out)
}

func TestDispatcher_Errors(t *testing.T) {
	d := NewDispatcher(map[string]Function{"travel_weather": weatherFunction()})

	tests := []struct {
		name string
		call core.FunctionCall
		code string
	}{
		{"unknown function", core.FunctionCall{Name: "flight_prices"}, CodeNotFound},
		{"invalid json", core.FunctionCall{Name: "travel_weather", Arguments: `{"city":`}, CodeValidation},
		{"non-object json", core.FunctionCall{Name: "travel_weather", Arguments: `["Madrid"]`}, CodeValidation},
		{"missing required", core.FunctionCall{Name: "travel_weather", Arguments: `{"month":"May"}`}, CodeValidation},
		{"wrong type", core.FunctionCall{Name: "travel_weather", Arguments: `{"city":7}`}, CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContext(nil)
			_, err := d.Dispatch(c, tt.call)

			var fnErr *FunctionError
			require.ErrorAs(t, err, &fnErr)
			assert.Equal(t, tt.code, fnErr.Code)
			assert.True(t, c.ErrorOccurred())
		})
	}
}
