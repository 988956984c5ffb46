package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semkernel/model"
)

func TestNewPromptConfig(t *testing.T) {
	cfg := NewPromptConfig(CompletionConfig{
		MaxTokens:        2000,
		Temperature:      0.7,
		TopP:             0.8,
		FunctionCall:     "auto",
		ChatSystemPrompt: "You are a travel weather chat bot.",
	})

	assert.Equal(t, "completion", cfg.Type)
	assert.Equal(t, model.Settings{
		MaxTokens:    2000,
		Temperature:  0.7,
		TopP:         0.8,
		FunctionCall: "auto",
	}, cfg.Settings())
	assert.Equal(t, "You are a travel weather chat bot.", cfg.Completion.ChatSystemPrompt)

	defaults := NewPromptConfig(CompletionConfig{})
	assert.EqualValues(t, DefaultMaxTokens, defaults.Completion.MaxTokens)
	assert.InDelta(t, DefaultTopP, defaults.Completion.TopP, 1e-9)
	assert.Zero(t, defaults.Completion.Temperature)
}

func TestParsePromptConfig_JSON(t *testing.T) {
	cfg, err := ParsePromptConfig([]byte(`{
		"schema": 1,
		"type": "completion",
		"description": "Pairs wine with food",
		"completion": {"max_tokens": 500, "temperature": 0.5, "stop_sequences": ["###"]},
		"input": {"parameters": [{"name": "input", "description": "The wine", "defaultValue": "Red wine"}]}
	}`), "json")
	require.NoError(t, err)

	assert.Equal(t, "Pairs wine with food", cfg.Description)
	assert.EqualValues(t, 500, cfg.Completion.MaxTokens)
	assert.InDelta(t, 1.0, cfg.Completion.TopP, 1e-9, "absent fields keep defaults")
	assert.Equal(t, []string{"###"}, cfg.Settings().StopSequences)
	assert.Equal(t, []Parameter{{Name: "input", Description: "The wine", DefaultValue: "Red wine", Type: "string"}}, cfg.Parameters())
}

func TestParsePromptConfig_YAML(t *testing.T) {
	cfg, err := ParsePromptConfig([]byte(`
description: Pairs wine with food
template_format: go
completion:
  max_tokens: 120
  top_p: 0.5
input:
  parameters:
    - name: input
      defaultValue: White wine
`), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "go", cfg.TemplateFormat)
	assert.EqualValues(t, 120, cfg.Completion.MaxTokens)
	assert.InDelta(t, 0.5, cfg.Completion.TopP, 1e-9)
	assert.Equal(t, "White wine", cfg.Input.Parameters[0].DefaultValue)
}

func TestParsePromptConfig_Errors(t *testing.T) {
	_, err := ParsePromptConfig([]byte(`{`), "json")
	require.Error(t, err)

	_, err = ParsePromptConfig([]byte(`{"type": "embedding"}`), "json")
	require.Error(t, err)

	_, err = ParsePromptConfig([]byte(`{"template_format": "jinja2"}`), "json")
	require.Error(t, err)

	_, err = ParsePromptConfig([]byte(`x = 1`), "toml")
	require.Error(t, err)
}

func TestPromptConfig_ValidateReportsEveryField(t *testing.T) {
	_, err := ParsePromptConfig([]byte(`{
		"type": "embedding",
		"completion": {"temperature": 3, "top_p": -0.5},
		"input": {"parameters": [{"description": "unnamed"}]}
	}`), "json")
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `type "embedding" is not one of [completion]`)
	assert.Contains(t, msg, "completion.temperature must be at most 2")
	assert.Contains(t, msg, "completion.top_p must be at least 0")
	assert.Contains(t, msg, "input.parameters[0].name is required")
}

func TestPromptConfig_ValidateDefaults(t *testing.T) {
	require.NoError(t, DefaultPromptConfig().Validate())
	require.NoError(t, NewPromptConfig(CompletionConfig{FunctionCall: "auto"}).Validate())
}

func TestLoadPromptConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("description: from yaml\n"), 0o600))

	cfg, err := LoadPromptConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from yaml", cfg.Description)

	_, err = LoadPromptConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
