package skill

import (
	"errors"
	"fmt"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
)

// GlobalSkill is the skill name used for functions created without one.
const GlobalSkill = "_GLOBAL_FUNCTIONS_"

// Function is a unit the kernel can run against a core.Context.
//
// Invoke reads its arguments from the context variables and writes its result
// to the main variable. On failure it records the error on the context via
// Context.Fail and returns it.
type Function interface {
	Name() string
	SkillName() string
	Description() string
	Parameters() []Parameter
	IsSemantic() bool
	Invoke(ctx *core.Context) error
}

// Parameter describes one context variable a function reads.
type Parameter struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
	Type         string `json:"type,omitempty"` // JSON schema type, "string" when empty
	Required     bool   `json:"required,omitempty"`
}

// View is a read-only description of a registered function.
type View struct {
	Skill       string      `json:"skill"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	IsSemantic  bool        `json:"is_semantic"`
}

// ViewOf describes fn.
func ViewOf(fn Function) View {
	return View{
		Skill:       fn.SkillName(),
		Name:        fn.Name(),
		Description: fn.Description(),
		Parameters:  fn.Parameters(),
		IsSemantic:  fn.IsSemantic(),
	}
}

// QualifiedName returns "Skill-function", the form exposed to models.
func QualifiedName(fn Function) string {
	return fn.SkillName() + "-" + fn.Name()
}

// Error codes carried by FunctionError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeModel      = "MODEL_ERROR"
	CodeNotFound   = "NOT_FOUND"
)

// ErrFunctionNotFound is wrapped by every NOT_FOUND FunctionError.
var ErrFunctionNotFound = errors.New("function not found")

// FunctionError represents a failed lookup, validation or execution.
type FunctionError struct {
	Skill    string `json:"skill,omitempty"`
	Function string `json:"function"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Err      error  `json:"-"`
}

func (e *FunctionError) Error() string {
	name := e.Function
	if e.Skill != "" {
		name = e.Skill + "." + e.Function
	}
	if e.Code != "" {
		return fmt.Sprintf("function error [%s] in %s: %s", e.Code, name, e.Message)
	}
	return fmt.Sprintf("function error in %s: %s", name, e.Message)
}

func (e *FunctionError) Unwrap() error { return e.Err }

func notFound(skillName, name string) *FunctionError {
	return &FunctionError{
		Skill:    skillName,
		Function: name,
		Message:  "function not registered",
		Code:     CodeNotFound,
		Err:      ErrFunctionNotFound,
	}
}

// fail records err on the context and returns it.
func fail(c *core.Context, err *FunctionError) error {
	c.Fail(err.Error(), err)
	return err
}

// ParametersSchema builds a JSON schema object from a parameter list.
func ParametersSchema(params []Parameter) map[string]any {
	props := make(map[string]any, len(params))
	required := make([]string, 0)
	for _, p := range params {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		prop := map[string]any{"type": typ}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

type schemaProvider interface {
	Schema() map[string]any
}

// SchemaOf returns the argument schema of fn.
func SchemaOf(fn Function) map[string]any {
	if sp, ok := fn.(schemaProvider); ok {
		return sp.Schema()
	}
	return ParametersSchema(fn.Parameters())
}

// ToolDefinition exposes fn to a model under its qualified name.
func ToolDefinition(fn Function) model.ToolDefinition {
	return model.NewFunctionTool(model.FunctionDefinition{
		Name:        QualifiedName(fn),
		Description: fn.Description(),
		Parameters:  SchemaOf(fn),
	})
}

// applyDefaults fills missing variables from parameter defaults and reports
// the first required parameter that is still missing.
func applyDefaults(c *core.Context, params []Parameter) (string, bool) {
	for _, p := range params {
		if _, ok := c.Variables.Get(p.Name); ok {
			continue
		}
		if p.DefaultValue != "" {
			c.Variables.Set(p.Name, p.DefaultValue)
			continue
		}
		if p.Required {
			return p.Name, false
		}
	}
	return "", true
}
