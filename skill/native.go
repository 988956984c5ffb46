package skill

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/internal/util"
	"github.com/hupe1980/semkernel/logging"
)

// NativeFunc is the Go implementation behind a NativeFunction. It reads its
// arguments from ctx.Variables and returns the function result.
type NativeFunc func(ctx *core.Context) (string, error)

// NativeSkill is implemented by types that expose a group of native
// functions. The kernel imports them under a skill name of the caller's
// choosing.
type NativeSkill interface {
	Functions() []*NativeFunction
}

// NativeFunction exposes a plain Go function as a kernel function.
//
// Before the wrapped function runs, missing variables are filled from
// parameter defaults and missing required parameters fail with
// VALIDATION_ERROR. Errors returned by the function are wrapped as
// EXECUTION_ERROR unless they already are a *FunctionError.
//
// A NativeFunction has no mutable state after construction and is safe for
// concurrent use.
type NativeFunction struct {
	skill       string
	name        string
	description string
	params      []Parameter
	schema      map[string]any
	fn          NativeFunc
}

// NewNativeFunction wraps fn with an explicit parameter list.
//
// Example:
//
//	weather := NewNativeFunction(
//	  "travel_weather",
//	  "Takes a city and a month and returns the average temperature for that month.",
//	  []Parameter{
//	    {Name: "city", Description: "The city for which to get the average temperature.", Required: true},
//	    {Name: "month", Description: "The month for which to get the average temperature.", Required: true},
//	  },
//	  func(ctx *core.Context) (string, error) { ... },
//	)
func NewNativeFunction(name, description string, params []Parameter, fn NativeFunc) *NativeFunction {
	return &NativeFunction{
		name:        name,
		description: description,
		params:      params,
		schema:      ParametersSchema(params),
		fn:          fn,
	}
}

// NewNativeFunctionFromStruct derives the parameters from an argument struct
// the way util.CreateSchema does: json tags name the parameters, description
// tags document them and fields without omitempty are required.
func NewNativeFunctionFromStruct(name, description string, structType any, fn NativeFunc) *NativeFunction {
	schema := util.CreateSchema(structType)

	required := map[string]bool{}
	for _, r := range util.RequiredFields(schema) {
		required[r] = true
	}

	props, _ := schema["properties"].(map[string]any)
	params := make([]Parameter, 0, len(props))
	for pname, raw := range props {
		prop, _ := raw.(map[string]any)
		p := Parameter{Name: pname, Required: required[pname]}
		p.Type, _ = prop["type"].(string)
		p.Description, _ = prop["description"].(string)
		p.DefaultValue, _ = prop["default"].(string)
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })

	return &NativeFunction{
		name:        name,
		description: description,
		params:      params,
		schema:      schema,
		fn:          fn,
	}
}

// InSkill returns a copy of f registered under skillName.
func (f *NativeFunction) InSkill(skillName string) *NativeFunction {
	cp := *f
	cp.skill = skillName
	return &cp
}

func (f *NativeFunction) Name() string            { return f.name }
func (f *NativeFunction) SkillName() string       { return f.skill }
func (f *NativeFunction) Description() string     { return f.description }
func (f *NativeFunction) Parameters() []Parameter { return f.params }
func (f *NativeFunction) IsSemantic() bool        { return false }

// Schema returns the JSON schema describing the function's arguments.
func (f *NativeFunction) Schema() map[string]any { return f.schema }

// Invoke runs the function and stores its result as the main variable.
func (f *NativeFunction) Invoke(c *core.Context) error {
	start := time.Now()
	c.LogDebug("function.call.start", "skill", f.skill, "function", f.name)

	if missing, ok := applyDefaults(c, f.params); !ok {
		c.LogWarn("function.call.validation_failed", "skill", f.skill, "function", f.name, "parameter", missing)
		return fail(c, &FunctionError{
			Skill:    f.skill,
			Function: f.name,
			Message:  fmt.Sprintf("missing required parameter %q", missing),
			Code:     CodeValidation,
		})
	}

	result, err := f.fn(c)
	logging.FunctionCall(c.Log(), f.skill, f.name, time.Since(start), err)
	if err != nil {
		var fnErr *FunctionError
		if errors.As(err, &fnErr) {
			return fail(c, fnErr)
		}
		return fail(c, &FunctionError{
			Skill:    f.skill,
			Function: f.name,
			Message:  err.Error(),
			Code:     CodeExecution,
			Err:      err,
		})
	}

	c.Variables.Update(result)
	return nil
}
