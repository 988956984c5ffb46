package weather

import (
	"fmt"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
	"github.com/hupe1980/semkernel/skill"
)

// FunctionName is the name the chat model uses for the weather function.
const FunctionName = "travel_weather"

// FunctionDefinition is the hand-written schema offered to the chat model.
func FunctionDefinition() model.FunctionDefinition {
	return model.FunctionDefinition{
		Name:        FunctionName,
		Description: "Finds the average temperature for a city in a month.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "The city for example Madrid",
				},
				"month": map[string]any{
					"type":        "string",
					"description": "The month of the year, for example June",
				},
			},
			"required": []string{"city", "month"},
		},
	}
}

// Tools returns FunctionDefinition as the tool list of a request.
func Tools() []model.ToolDefinition {
	return []model.ToolDefinition{model.NewFunctionTool(FunctionDefinition())}
}

var parameters = []skill.Parameter{
	{Name: "city", Description: "The city for which to get the average temperature.", Required: true},
	{Name: "month", Description: "The month for which to get the average temperature.", Required: true},
}

// TravelWeather answers travel_weather from a weather service for a fixed
// country.
type TravelWeather struct {
	client  *Client
	country string
}

// NewTravelWeather creates the skill.
func NewTravelWeather(client *Client, country string) *TravelWeather {
	return &TravelWeather{client: client, country: country}
}

// Functions implements skill.NativeSkill.
func (s *TravelWeather) Functions() []*skill.NativeFunction {
	return []*skill.NativeFunction{s.Function()}
}

// Function returns the travel_weather function.
func (s *TravelWeather) Function() *skill.NativeFunction {
	return skill.NewNativeFunction(FunctionName,
		"Takes a city and a month and returns the average high temperature for that month.",
		parameters,
		func(c *core.Context) (string, error) {
			city, _ := c.Variables.Get("city")
			month, _ := c.Variables.Get("month")

			t, err := s.client.AverageTemperature(c.Context(), s.country, city, month)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("The average high temperature in %s in %s is %d degrees.", city, month, t.High), nil
		})
}

// StaticTravelWeather answers travel_weather with a fixed temperature. It
// stands in for a real service in the function calling walkthrough.
type StaticTravelWeather struct{}

// Functions implements skill.NativeSkill.
func (StaticTravelWeather) Functions() []*skill.NativeFunction {
	return []*skill.NativeFunction{
		skill.NewNativeFunction(FunctionName,
			"Takes a city and a month and returns the average temperature for that month.",
			parameters,
			func(c *core.Context) (string, error) {
				city, _ := c.Variables.Get("city")
				month, _ := c.Variables.Get("month")
				return fmt.Sprintf("The average temperature in %s in %s is 75 degrees.", city, month), nil
			}),
	}
}
