package core

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/semkernel/logging"
)

// FunctionCallKey is the object key under which a semantic function stores
// the first function call requested by the model.
const FunctionCallKey = "function_call"

// FunctionCallsKey holds every function call of the last model reply.
const FunctionCallsKey = "function_calls"

// Context is the mutable execution scope passed to functions. It carries the
// variables a function reads and writes, an object bag for non-string
// results, and the error state of the last failing step.
//
// A failed Context keeps its error until Reset is called; pipelines stop at
// the first failure.
type Context struct {
	ID        string
	Variables *Variables

	ctx     context.Context
	mu      sync.Mutex
	objects map[string]any

	errorOccurred    bool
	errorDescription string
	lastErr          error

	logger logging.Logger
}

// NewContext binds a Context to ctx. Nil vars become an empty set and a nil
// logger becomes a NoOpLogger.
func NewContext(ctx context.Context, vars *Variables, logger logging.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if vars == nil {
		vars = NewVariables("")
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{
		ID:        uuid.NewString(),
		Variables: vars,
		ctx:       ctx,
		objects:   map[string]any{},
		logger:    logger,
	}
}

// Context returns the cancellation context.
func (c *Context) Context() context.Context { return c.ctx }

// WithVariables returns a child Context sharing the cancellation context,
// logger and ID but operating on vars. Objects and error state start empty.
func (c *Context) WithVariables(vars *Variables) *Context {
	child := NewContext(c.ctx, vars, c.Logger())
	child.ID = c.ID
	return child
}

// Fail records a failure. The description is what callers print; err keeps
// the underlying cause for errors.Is/As.
func (c *Context) Fail(description string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		err = errors.New(description)
	}
	c.errorOccurred = true
	c.errorDescription = description
	c.lastErr = err
	c.LogError("context.fail", "error", description)
}

// ErrorOccurred reports whether a step failed.
func (c *Context) ErrorOccurred() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorOccurred
}

// LastErrorDescription returns the description passed to Fail.
func (c *Context) LastErrorDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorDescription
}

// LastError returns the error passed to Fail.
func (c *Context) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Reset clears the error state.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorOccurred = false
	c.errorDescription = ""
	c.lastErr = nil
}

// Result returns the main variable.
func (c *Context) Result() string { return c.Variables.Input() }

// String returns the main variable.
func (c *Context) String() string { return c.Result() }

// SetObject stores a non-string value.
func (c *Context) SetObject(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[key] = v
}

// Object returns the value stored under key.
func (c *Context) Object(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.objects[key]
	return v, ok
}

// PopObject returns and removes the value stored under key.
func (c *Context) PopObject(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.objects[key]
	if ok {
		delete(c.objects, key)
	}
	return v, ok
}

// PopFunctionCall removes and returns the pending function call, if any.
// The companion FunctionCallsKey entry is removed as well.
func (c *Context) PopFunctionCall() (*FunctionCall, bool) {
	v, ok := c.PopObject(FunctionCallKey)
	_, _ = c.PopObject(FunctionCallsKey)
	if !ok {
		return nil, false
	}
	switch fc := v.(type) {
	case *FunctionCall:
		return fc, fc != nil
	case FunctionCall:
		return &fc, true
	default:
		return nil, false
	}
}
