package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FunctionCall describes a tool/function invocation request produced by a model.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // JSON object text
}

// ParseArguments decodes the JSON argument object. Blank arguments decode to
// an empty map; any JSON value other than an object is rejected.
func (fc FunctionCall) ParseArguments() (map[string]any, error) {
	if strings.TrimSpace(fc.Arguments) == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
		return nil, fmt.Errorf("parse arguments of %s: %w", fc.Name, err)
	}
	if args == nil {
		return nil, fmt.Errorf("parse arguments of %s: expected a JSON object", fc.Name)
	}
	return args, nil
}

// SplitName separates a qualified function name into skill and function.
// Both "Skill-function" and "Skill.function" are accepted; a bare name
// returns an empty skill.
func (fc FunctionCall) SplitName() (skill, function string) {
	name := strings.TrimSpace(fc.Name)
	if i := strings.IndexAny(name, "-."); i > 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// String renders the call for log and console output.
func (fc FunctionCall) String() string {
	return fmt.Sprintf("%s(%s)", fc.Name, fc.Arguments)
}
