// Package config loads the process configuration from the environment, an
// optional .env file and the OS keyring.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Chat providers.
const (
	ProviderAuto      = "auto"
	ProviderAzure     = "azure"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// EnvFile is the file name searched for when no env file is given.
const EnvFile = ".env"

type Config struct {
	AzureDeploymentName string `envconfig:"AZURE_OPENAI_DEPLOYMENT_NAME"`
	AzureEndpoint       string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey         string `envconfig:"AZURE_OPENAI_API_KEY"`
	AzureAPIVersion     string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2023-07-01-preview"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL" default:"claude-3-5-sonnet-20241022"`

	ChatProvider          string  `envconfig:"CHAT_PROVIDER" default:"auto"`
	ChatRequestsPerSecond float64 `envconfig:"CHAT_REQUESTS_PER_SECOND" default:"0"`
	MaxModelCalls         int     `envconfig:"MAX_MODEL_CALLS" default:"8"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	WeatherServiceURL string `envconfig:"WEATHER_SERVICE_URL" default:"http://127.0.0.1:8000"`
	WeatherCountry    string `envconfig:"WEATHER_COUNTRY" default:"Portugal"`
	WeatherAddr       string `envconfig:"WEATHER_ADDR" default:":8000"`
	WeatherCacheSize  int    `envconfig:"WEATHER_CACHE_SIZE" default:"128"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `ignored:"true"`
}

// Load reads the configuration. A non-empty envFile must exist and is
// loaded; otherwise the first .env found in the working directory or one of
// its parents is loaded. Variables already set in the environment win over
// the file. Empty secrets fall back to the OS keyring.
func Load(envFile string) (*Config, error) {
	loaded, err := loadEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.EnvFile = loaded

	cfg.AzureAPIKey = GetOrEnv(KeyAzureOpenAI, cfg.AzureAPIKey)
	cfg.OpenAIAPIKey = GetOrEnv(KeyOpenAI, cfg.OpenAIAPIKey)
	cfg.AnthropicAPIKey = GetOrEnv(KeyAnthropic, cfg.AnthropicAPIKey)

	return &cfg, nil
}

func loadEnvFile(envFile string) (string, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return "", fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return envFile, nil
	}

	path, err := FindEnvFile()
	if err != nil || path == "" {
		return "", err
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return path, nil
}

// FindEnvFile returns the nearest .env in the working directory or its
// parents, or "" when there is none.
func FindEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, EnvFile)
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			return path, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) hasAzure() bool {
	return c.AzureDeploymentName != "" && c.AzureEndpoint != "" && c.AzureAPIKey != ""
}

// Provider resolves the chat provider. "auto" picks Azure when its three
// variables are set, then OpenAI, then Anthropic.
func (c *Config) Provider() (string, error) {
	p := strings.ToLower(strings.TrimSpace(c.ChatProvider))
	switch p {
	case ProviderAzure, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	case "", ProviderAuto:
		switch {
		case c.hasAzure():
			return ProviderAzure, nil
		case c.OpenAIAPIKey != "":
			return ProviderOpenAI, nil
		case c.AnthropicAPIKey != "":
			return ProviderAnthropic, nil
		}
		return "", fmt.Errorf("no chat provider configured: set AZURE_OPENAI_DEPLOYMENT_NAME, AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY, or OPENAI_API_KEY, or ANTHROPIC_API_KEY")
	default:
		return "", fmt.Errorf("unknown chat provider %q (valid: auto, azure, openai, anthropic)", c.ChatProvider)
	}
}

// Validate reports every variable the resolved provider is missing.
func (c *Config) Validate() error {
	provider, err := c.Provider()
	if err != nil {
		return err
	}

	var missing []string
	switch provider {
	case ProviderAzure:
		if c.AzureDeploymentName == "" {
			missing = append(missing, "AZURE_OPENAI_DEPLOYMENT_NAME")
		}
		if c.AzureEndpoint == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
		if c.AzureAPIKey == "" {
			missing = append(missing, "AZURE_OPENAI_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s provider requires %s", provider, strings.Join(missing, ", "))
	}
	if c.MaxModelCalls < 0 {
		return fmt.Errorf("MAX_MODEL_CALLS must not be negative")
	}
	if c.ChatRequestsPerSecond < 0 {
		return fmt.Errorf("CHAT_REQUESTS_PER_SECOND must not be negative")
	}
	return nil
}
