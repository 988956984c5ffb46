package skill

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/semkernel/model"
	"github.com/hupe1980/semkernel/template"
)

// Completion defaults applied when a config leaves a value out.
const (
	DefaultMaxTokens   = 256
	DefaultTemperature = 0.0
	DefaultTopP        = 1.0
)

// PromptConfig is the per-function configuration stored next to a prompt
// (config.json or config.yaml) or built in code with NewPromptConfig.
type PromptConfig struct {
	Schema          int              `json:"schema" yaml:"schema"`
	Type            string           `json:"type" yaml:"type" validate:"omitempty,oneof=completion"`
	Description     string           `json:"description" yaml:"description"`
	TemplateFormat  string           `json:"template_format,omitempty" yaml:"template_format,omitempty" validate:"omitempty,oneof=semantic-kernel go"`
	Completion      CompletionConfig `json:"completion" yaml:"completion"`
	Input           InputConfig      `json:"input" yaml:"input"`
	DefaultServices []string         `json:"default_services,omitempty" yaml:"default_services,omitempty"`
}

// CompletionConfig holds the model request settings of a prompt.
type CompletionConfig struct {
	MaxTokens        int64    `json:"max_tokens" yaml:"max_tokens" validate:"min=0"`
	Temperature      float64  `json:"temperature" yaml:"temperature" validate:"min=0,max=2"`
	TopP             float64  `json:"top_p" yaml:"top_p" validate:"min=0,max=1"`
	PresencePenalty  float64  `json:"presence_penalty" yaml:"presence_penalty" validate:"min=-2,max=2"`
	FrequencyPenalty float64  `json:"frequency_penalty" yaml:"frequency_penalty" validate:"min=-2,max=2"`
	StopSequences    []string `json:"stop_sequences,omitempty" yaml:"stop_sequences,omitempty"`
	ChatSystemPrompt string   `json:"chat_system_prompt,omitempty" yaml:"chat_system_prompt,omitempty"`
	FunctionCall     string   `json:"function_call,omitempty" yaml:"function_call,omitempty"`
}

// InputConfig lists the variables a prompt expects.
type InputConfig struct {
	Parameters []ParameterConfig `json:"parameters" yaml:"parameters" validate:"dive"`
}

// ParameterConfig documents one prompt variable.
type ParameterConfig struct {
	Name         string `json:"name" yaml:"name" validate:"required"`
	Description  string `json:"description" yaml:"description"`
	DefaultValue string `json:"defaultValue" yaml:"defaultValue"`
}

// DefaultPromptConfig returns a completion config with default settings.
func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		Schema:         1,
		Type:           "completion",
		TemplateFormat: template.FormatSemanticKernel,
		Completion: CompletionConfig{
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
			TopP:        DefaultTopP,
		},
	}
}

// NewPromptConfig builds a config from completion parameters. A zero
// MaxTokens or TopP takes the default; every other value is used as given.
func NewPromptConfig(c CompletionConfig) *PromptConfig {
	cfg := DefaultPromptConfig()
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.TopP <= 0 {
		c.TopP = DefaultTopP
	}
	cfg.Completion = c
	return cfg
}

// ParsePromptConfig decodes a config in the given format ("json" or "yaml").
// Fields absent from data keep their defaults.
func ParsePromptConfig(data []byte, format string) (*PromptConfig, error) {
	cfg := DefaultPromptConfig()

	var err error
	switch strings.ToLower(format) {
	case "json":
		err = json.Unmarshal(data, cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported prompt config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode prompt config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPromptConfig reads a config file, choosing the decoder by extension.
func LoadPromptConfig(path string) (*PromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParsePromptConfig(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the config type, template format, completion ranges and
// that every input parameter is named. All violations are reported.
func (c *PromptConfig) Validate() error {
	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("invalid prompt config: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "PromptConfig.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s %q is not one of [%s]", field, fe.Value(), fe.Param())
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s fails %s", field, fe.Tag())
	}
}

// Settings converts the completion config into model request settings.
func (c *PromptConfig) Settings() model.Settings {
	return model.Settings{
		MaxTokens:        c.Completion.MaxTokens,
		Temperature:      c.Completion.Temperature,
		TopP:             c.Completion.TopP,
		PresencePenalty:  c.Completion.PresencePenalty,
		FrequencyPenalty: c.Completion.FrequencyPenalty,
		StopSequences:    c.Completion.StopSequences,
		FunctionCall:     c.Completion.FunctionCall,
	}
}

// Parameters converts the input parameter list.
func (c *PromptConfig) Parameters() []Parameter {
	params := make([]Parameter, 0, len(c.Input.Parameters))
	for _, p := range c.Input.Parameters {
		params = append(params, Parameter{
			Name:         p.Name,
			Description:  p.Description,
			DefaultValue: p.DefaultValue,
			Type:         "string",
		})
	}
	return params
}
