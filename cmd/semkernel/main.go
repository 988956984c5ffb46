package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/semkernel"
	"github.com/hupe1980/semkernel/config"
	"github.com/hupe1980/semkernel/logging"
	"github.com/hupe1980/semkernel/model"
	"github.com/hupe1980/semkernel/model/anthropic"
	"github.com/hupe1980/semkernel/model/openai"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// app holds the state shared by the subcommands.
type app struct {
	envFile   string
	provider  string
	logLevel  string
	logFormat string
	offline   bool

	cfg    *config.Config
	logger logging.Logger
	zl     zerolog.Logger

	// mock is the offline chat model. When it is set before a command runs,
	// the command's scripted replies are not queued.
	mock *model.MockModel
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "semkernel",
		Short: "Semantic functions, skills and function calling on chat models",
		Long: `semkernel runs prompt-driven semantic functions against a chat model
(Azure OpenAI, OpenAI or Anthropic) and lets the model call native Go
functions.

The provider is picked from the environment (or a .env file):
  AZURE_OPENAI_DEPLOYMENT_NAME, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY
  OPENAI_API_KEY
  ANTHROPIC_API_KEY
Keys may also be stored in the OS keyring with "semkernel credentials set".

Examples:
  semkernel simple
  semkernel system-prompt --question "What is the weather like in Lisbon in May?"
  semkernel skills --plugins ./plugins --input "Red wine"
  semkernel functions
  semkernel weather-server --addr :8000
  semkernel microservice --auto`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Path to a .env file (default: nearest .env)")
	rootCmd.PersistentFlags().StringVar(&a.provider, "provider", "", "Chat provider: auto, azure, openai, anthropic")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console, json, text")
	rootCmd.PersistentFlags().BoolVar(&a.offline, "offline", false, "Use a scripted in-memory chat model")

	rootCmd.AddCommand(simpleCmd(a))
	rootCmd.AddCommand(systemPromptCmd(a))
	rootCmd.AddCommand(skillsCmd(a))
	rootCmd.AddCommand(functionsCmd(a))
	rootCmd.AddCommand(microserviceCmd(a))
	rootCmd.AddCommand(weatherServerCmd(a))
	rootCmd.AddCommand(credentialsCmd(a))

	return rootCmd
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.provider != "" {
		cfg.ChatProvider = a.provider
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	a.cfg = cfg

	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "", "console":
		console := logging.NewConsoleLogger(stderr, level)
		a.logger = console
		a.zl = console.Zerolog()
	case "json", "text":
		a.logger = logging.NewLogger(&logging.LoggerConfig{
			Level:     level,
			Format:    strings.ToLower(cfg.LogFormat),
			Output:    stderr,
			Component: "semkernel",
		})
		a.zl = zerolog.New(stderr).Level(zerologLevel(cfg.LogLevel)).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q (valid: console, json, text)", cfg.LogFormat)
	}

	if cfg.EnvFile != "" {
		a.logger.Debug("config.env_file.loaded", "path", cfg.EnvFile)
	}
	return nil
}

func zerologLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// newKernel builds a kernel with the configured chat service registered as
// default. script seeds the offline model with the replies a command expects.
func (a *app) newKernel(script func(m *model.MockModel)) (*semkernel.Kernel, error) {
	name, m, err := a.chatModel(script)
	if err != nil {
		return nil, err
	}

	k := semkernel.New(func(o *semkernel.Options) {
		o.Logger = a.logger
		o.MaxModelCalls = a.cfg.MaxModelCalls
	})
	k.AddChatService(name, m, true)
	return k, nil
}

func (a *app) chatModel(script func(m *model.MockModel)) (string, model.Model, error) {
	if a.offline {
		if a.mock == nil {
			a.mock = model.NewMockModel("offline")
			if script != nil {
				script(a.mock)
			}
		}
		return "offline", a.mock, nil
	}

	if err := a.cfg.Validate(); err != nil {
		return "", nil, err
	}
	provider, err := a.cfg.Provider()
	if err != nil {
		return "", nil, err
	}

	var m model.Model
	switch provider {
	case config.ProviderAzure:
		m = openai.NewAzureModel(a.cfg.AzureDeploymentName, a.cfg.AzureEndpoint, a.cfg.AzureAPIKey, a.cfg.AzureAPIVersion)
	case config.ProviderOpenAI:
		m = openai.NewModel(func(o *openai.Options) {
			o.APIKey = a.cfg.OpenAIAPIKey
			o.BaseURL = a.cfg.OpenAIBaseURL
			if a.cfg.OpenAIModel != "" {
				o.Model = a.cfg.OpenAIModel
			}
		})
	case config.ProviderAnthropic:
		m = anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = a.cfg.AnthropicAPIKey
			if a.cfg.AnthropicModel != "" {
				o.Model = anthropicsdk.Model(a.cfg.AnthropicModel)
			}
		})
	}

	if rps := a.cfg.ChatRequestsPerSecond; rps > 0 {
		m = model.RateLimited(m, rate.NewLimiter(rate.Limit(rps), 1))
	}

	a.logger.Debug("chat.service.configured", "provider", provider, "model", m.Info().Name)
	return provider, m, nil
}
