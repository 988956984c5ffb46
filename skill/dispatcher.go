package skill

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/internal/util"
)

// Dispatcher maps the function names a model may call to functions.
type Dispatcher struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewDispatcher creates a dispatcher from a name to function mapping.
func NewDispatcher(functions map[string]Function) *Dispatcher {
	d := &Dispatcher{functions: map[string]Function{}}
	for name, fn := range functions {
		d.Register(name, fn)
	}
	return d
}

// Register maps name to fn, replacing an earlier mapping.
func (d *Dispatcher) Register(name string, fn Function) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.functions[name] = fn
}

// Names returns the registered names in sorted order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.functions))
	for n := range d.functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the function mapped to name. An exact match wins over a
// case-insensitive one.
func (d *Dispatcher) Lookup(name string) (Function, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if fn, ok := d.functions[name]; ok {
		return fn, true
	}
	for n, fn := range d.functions {
		if strings.EqualFold(n, name) {
			return fn, true
		}
	}
	return nil, false
}

// Dispatch runs the function a model asked for. The JSON arguments become
// variables on a copy of the caller's variables (non-string values are
// formatted with %v) and are validated against the function's schema. The
// function result is returned; failures are also recorded on c.
func (d *Dispatcher) Dispatch(c *core.Context, call core.FunctionCall) (string, error) {
	fn, ok := d.Lookup(call.Name)
	if !ok {
		return "", fail(c, notFound("", call.Name))
	}
	return InvokeCall(c, fn, call)
}

// InvokeCall runs fn with the arguments of call. See Dispatcher.Dispatch.
func InvokeCall(c *core.Context, fn Function, call core.FunctionCall) (string, error) {
	args, err := call.ParseArguments()
	if err != nil {
		return "", fail(c, &FunctionError{
			Skill:    fn.SkillName(),
			Function: fn.Name(),
			Message:  err.Error(),
			Code:     CodeValidation,
			Err:      err,
		})
	}

	if err := util.ValidateParameters(args, SchemaOf(fn)); err != nil {
		return "", fail(c, &FunctionError{
			Skill:    fn.SkillName(),
			Function: fn.Name(),
			Message:  fmt.Sprintf("parameter validation failed: %v", err),
			Code:     CodeValidation,
			Err:      err,
		})
	}

	vars := c.Variables.Clone()
	for k, v := range args {
		if s, ok := v.(string); ok {
			vars.Set(k, s)
			continue
		}
		vars.Set(k, fmt.Sprintf("%v", v))
	}

	child := c.WithVariables(vars)
	c.LogDebug("function.dispatch", "call", call.Name, "call_id", call.ID, "skill", fn.SkillName(), "function", fn.Name())
	if err := fn.Invoke(child); err != nil {
		c.Fail(child.LastErrorDescription(), err)
		return "", err
	}
	return child.Result(), nil
}
