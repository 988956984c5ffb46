package main

import (
	"fmt"

	"github.com/hupe1980/semkernel"
	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
	"github.com/hupe1980/semkernel/skill"
	"github.com/hupe1980/semkernel/template"
	"github.com/hupe1980/semkernel/weather"
	"github.com/spf13/cobra"
)

const (
	espressoPrompt = `
    I need to understand what are the variables involved in making outstanding espresso besides
    a good machine. For example what is the combination of roast, grind, tamp, and water temperature.
    Include 3 practical steps to practice and improve each variable.
    `

	travelSystemPrompt = "You are a travel weather chat bot. Your name is Frederick. " +
		"You are trying to help people find the average temperature in a city in a month."

	greetingSystemPrompt = travelSystemPrompt +
		" Always reply with your name and a nice greeting, and always suggest using sunscreen in a formal way"

	defaultQuestion = "What is the average temperature in Seattle in June?"

	madridQuestion = "I'm travelling to Madrid, and it seems that it would happen in January. " +
		"What would be the average temperature?"
)

func simpleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "simple",
		Short: "Run an inline prompt once",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.newKernel(func(m *model.MockModel) {
				m.QueueResponse("Roast, grind, tamp and water temperature all shape the shot. " +
					"Practice each one: change a single variable, pull a shot and taste.")
			})
			if err != nil {
				return err
			}

			fn, err := k.CreateSemanticFunction(espressoPrompt)
			if err != nil {
				return err
			}
			out, err := k.RunString(cmd.Context(), "", fn)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func systemPromptCmd(a *app) *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "system-prompt",
		Short: "Ask Frederick, a chat bot steered by a system prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.newKernel(func(m *model.MockModel) {
				m.QueueResponse("Good day, I am Frederick. Seattle averages about 70 degrees in June. " +
					"I would respectfully recommend the use of sunscreen.")
			})
			if err != nil {
				return err
			}

			fn, err := registerTravelChat(k, greetingSystemPrompt, "")
			if err != nil {
				return err
			}
			vars := core.NewVariables("")
			vars.Set("user_input", question)

			c, err := k.Run(cmd.Context(), vars, fn)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Result())
			return nil
		},
	}

	cmd.Flags().StringVar(&question, "question", defaultQuestion, "Question for the chat bot")
	return cmd
}

func skillsCmd(a *app) *cobra.Command {
	var (
		pluginsDir string
		input      string
	)

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Import WinePlugin from a directory and run Somellier",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.newKernel(nil)
			if err != nil {
				return err
			}

			wine, err := k.ImportSemanticSkillFromDirectory(pluginsDir, "WinePlugin")
			if err != nil {
				return err
			}
			fn, ok := wine["Somellier"]
			if !ok {
				return fmt.Errorf("WinePlugin has no Somellier function")
			}

			out, err := k.RunString(cmd.Context(), input, fn)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&pluginsDir, "plugins", "./plugins", "Directory holding the skill directories")
	cmd.Flags().StringVar(&input, "input", "White wine", "Input for the Somellier function")
	return cmd
}

func functionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "Let the model decide whether to call travel_weather",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.newKernel(func(m *model.MockModel) {
				m.QueueFunctionCall(weather.FunctionName, `{"city": "Seattle", "month": "June"}`)
			})
			if err != nil {
				return err
			}

			if _, err := k.ImportSkill(weather.StaticTravelWeather{}, "TravelWeather"); err != nil {
				return err
			}
			fn, err := registerTravelChat(k, travelSystemPrompt, model.FunctionCallAuto)
			if err != nil {
				return err
			}
			fn.ChatTemplate().AddUserMessage("Hi there, who are you?")
			fn.ChatTemplate().AddAssistantMessage("I am Frederic, a chat bot. I'm trying to figure out what people need.")

			out := cmd.OutOrStdout()
			tools := weather.Tools()

			c := k.CreateNewContext(cmd.Context())
			c.Variables.Set("user_input", defaultQuestion)
			_ = fn.InvokeWithFunctions(c, tools)

			if c.ErrorOccurred() {
				fmt.Fprintf(out, "Error occurred: %s\n", c.LastErrorDescription())
				return nil
			}

			if call, ok := c.PopFunctionCall(); ok {
				printFunctionCall(cmd, call)
				return nil
			}

			fn.ChatTemplate().AddAssistantMessage("It is 85 degrees in Seattle in June")
			_ = fn.InvokeWithFunctions(c, tools)
			fmt.Fprintln(out, "No function was called")
			fmt.Fprintf(out, "Output was: %s\n", c)
			return nil
		},
	}
}

func microserviceCmd(a *app) *cobra.Command {
	var (
		serviceURL string
		country    string
		auto       bool
	)

	cmd := &cobra.Command{
		Use:   "microservice",
		Short: "Answer a travel question with the weather microservice",
		Long: `Asks the chat model about Madrid in January. When the model requests
travel_weather the call is dispatched to the weather microservice
(start it with "semkernel weather-server"). With --auto the kernel keeps
calling the model until it answers in text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serviceURL == "" {
				serviceURL = a.cfg.WeatherServiceURL
			}
			if country == "" {
				country = a.cfg.WeatherCountry
			}

			client, err := weather.NewClient(func(o *weather.ClientOptions) {
				o.BaseURL = serviceURL
				o.CacheSize = a.cfg.WeatherCacheSize
			})
			if err != nil {
				return err
			}
			travel := weather.NewTravelWeather(client, country)

			k, err := a.newKernel(func(m *model.MockModel) {
				m.QueueFunctionCall(weather.FunctionName, `{"city": "Madrid", "month": "January"}`)
				if auto {
					m.QueueResponse("Madrid is chilly in January, with average highs around 50 degrees.")
				}
			})
			if err != nil {
				return err
			}

			fn, err := registerTravelChat(k, travelSystemPrompt, model.FunctionCallAuto)
			if err != nil {
				return err
			}

			vars := core.NewVariables("")
			vars.Set("user_input", madridQuestion)
			out := cmd.OutOrStdout()

			if auto {
				if _, err := k.ImportSkill(travel, "TravelWeather"); err != nil {
					return err
				}
				c, err := k.Chat(cmd.Context(), fn, vars, weather.Tools())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, c.Result())
				return nil
			}

			c := core.NewContext(cmd.Context(), vars, k.Logger())
			_ = fn.InvokeWithFunctions(c, weather.Tools())
			if c.ErrorOccurred() {
				fmt.Fprintf(out, "Error occurred: %s\n", c.LastErrorDescription())
				return nil
			}

			call, ok := c.PopFunctionCall()
			if !ok {
				fmt.Fprintln(out, c.Result())
				return nil
			}
			printFunctionCall(cmd, call)

			dispatcher := skill.NewDispatcher(map[string]skill.Function{
				weather.FunctionName: travel.Function(),
			})
			result, err := dispatcher.Dispatch(c, *call)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceURL, "service-url", "", "Weather microservice base URL (default: WEATHER_SERVICE_URL)")
	cmd.Flags().StringVar(&country, "country", "", "Country the cities are looked up in (default: WEATHER_COUNTRY)")
	cmd.Flags().BoolVar(&auto, "auto", false, "Run the automatic function calling loop")
	return cmd
}

// registerTravelChat registers ChatBot.Chat: a "{{$user_input}}" chat prompt
// with the travel bot settings.
func registerTravelChat(k *semkernel.Kernel, systemPrompt, functionCall string) (*skill.SemanticFunction, error) {
	cfg := skill.NewPromptConfig(skill.CompletionConfig{
		MaxTokens:        2000,
		Temperature:      0.7,
		TopP:             0.8,
		ChatSystemPrompt: systemPrompt,
		FunctionCall:     functionCall,
	})
	user, err := template.New("{{$user_input}}")
	if err != nil {
		return nil, err
	}
	return k.RegisterSemanticFunction("ChatBot", "Chat", cfg,
		template.NewChatTemplate(user, cfg.Completion.ChatSystemPrompt))
}

func printFunctionCall(cmd *cobra.Command, call *core.FunctionCall) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Function to be called: %s\n", call.Name)
	fmt.Fprintf(out, "Function parameters: \n%s\n", call.Arguments)
}
