// Package semkernel provides a small orchestration kernel for chat models.
// Most applications interact with it by:
//  1. Creating a Kernel via New() and registering one or more chat services
//  2. Importing native skills (Go functions) and semantic skills (prompts)
//  3. Running functions through Run, or letting the model pick native
//     functions through Chat
//
// Functions read and write a core.Context. The main variable "input" carries
// a function's result into the next function of a pipeline, and failures
// are mirrored into the context's error state.
package semkernel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/logging"
	"github.com/hupe1980/semkernel/model"
	"github.com/hupe1980/semkernel/skill"
	"github.com/hupe1980/semkernel/template"
)

// ErrServiceNotFound is returned when a chat service lookup fails.
var ErrServiceNotFound = errors.New("chat service not found")

// DefaultMaxModelCalls bounds the automatic function calling loop of Chat.
const DefaultMaxModelCalls = 8

// Options configures the Kernel instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// MaxModelCalls limits the model calls of one Chat run. Set to 0 for
	// unlimited.
	MaxModelCalls int
}

// Kernel holds the chat services and the registered skills.
type Kernel struct {
	opts   Options
	skills *skill.Collection

	mu             sync.RWMutex
	services       map[string]model.Model
	defaultService string
}

// New creates a Kernel with optional overrides.
func New(optFns ...func(o *Options)) *Kernel {
	opts := Options{
		Logger:        logging.NoOpLogger{},
		MaxModelCalls: DefaultMaxModelCalls,
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Kernel{
		opts:     opts,
		skills:   skill.NewCollection(),
		services: map[string]model.Model{},
	}
}

// Logger returns the kernel logger.
func (k *Kernel) Logger() logging.Logger { return k.opts.Logger }

// AddChatService registers m under name. The first service added becomes
// the default; setAsDefault moves the default to m.
func (k *Kernel) AddChatService(name string, m model.Model, setAsDefault bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.services[name] = m
	if setAsDefault || k.defaultService == "" {
		k.defaultService = name
	}

	info := m.Info()
	k.opts.Logger.Debug("kernel.service.added", "service", name, "provider", info.Provider, "model", info.Name)
}

// ChatService returns the service registered under name. An empty name
// selects the default service.
func (k *Kernel) ChatService(name string) (model.Model, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if name == "" {
		name = k.defaultService
	}
	if m, ok := k.services[name]; ok {
		return m, nil
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no chat service registered", ErrServiceNotFound)
	}
	return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
}

// ChatServiceNames returns the registered service names.
func (k *Kernel) ChatServiceNames() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	names := make([]string, 0, len(k.services))
	for n := range k.services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FunctionOptions configures CreateSemanticFunction.
type FunctionOptions struct {
	SkillName    string
	FunctionName string
	Description  string
	// Config defaults to skill.DefaultPromptConfig.
	Config *skill.PromptConfig
}

// CreateSemanticFunction registers an inline prompt as a semantic function.
// Without a skill name it lands in the global skill; without a function name
// it gets a random one.
func (k *Kernel) CreateSemanticFunction(prompt string, optFns ...func(o *FunctionOptions)) (*skill.SemanticFunction, error) {
	opts := FunctionOptions{SkillName: skill.GlobalSkill}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FunctionName == "" {
		opts.FunctionName = randomFunctionName()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = skill.DefaultPromptConfig()
	}
	if opts.Description != "" {
		cp := *cfg
		cp.Description = opts.Description
		cfg = &cp
	}

	user, err := template.NewWithFormat(prompt, cfg.TemplateFormat)
	if err != nil {
		return nil, fmt.Errorf("create semantic function: %w", err)
	}
	fn, err := k.newSemanticFunction(opts.SkillName, opts.FunctionName, cfg,
		template.NewChatTemplate(user, cfg.Completion.ChatSystemPrompt))
	if err != nil {
		return nil, err
	}
	k.skills.Add(fn)
	return fn, nil
}

// RegisterSemanticFunction binds a prompt config and chat template to the
// chat service named in the config (or the default service) and registers
// the function. The function keeps history: every invocation appends its
// turns to chat. Inline and directory-loaded functions are stateless.
func (k *Kernel) RegisterSemanticFunction(skillName, name string, cfg *skill.PromptConfig, chat *template.ChatTemplate) (*skill.SemanticFunction, error) {
	fn, err := k.newSemanticFunction(skillName, name, cfg, chat)
	if err != nil {
		return nil, err
	}
	fn.SetKeepHistory(true)
	k.skills.Add(fn)
	return fn, nil
}

func (k *Kernel) newSemanticFunction(skillName, name string, cfg *skill.PromptConfig, chat *template.ChatTemplate) (*skill.SemanticFunction, error) {
	if !skill.ValidName(skillName) {
		return nil, fmt.Errorf("invalid skill name %q", skillName)
	}
	if !skill.ValidName(name) {
		return nil, fmt.Errorf("invalid function name %q", name)
	}
	if cfg == nil {
		cfg = skill.DefaultPromptConfig()
	}

	service, err := k.serviceFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("register %s.%s: %w", skillName, name, err)
	}

	fn := skill.NewSemanticFunction(skillName, name, cfg, chat)
	fn.SetChatService(service)
	fn.SetInvoker(k)
	return fn, nil
}

func (k *Kernel) serviceFor(cfg *skill.PromptConfig) (model.Model, error) {
	for _, name := range cfg.DefaultServices {
		if m, err := k.ChatService(name); err == nil {
			return m, nil
		}
	}
	return k.ChatService("")
}

// ImportSkill registers the functions of a native skill under skillName and
// returns them by function name.
func (k *Kernel) ImportSkill(s skill.NativeSkill, skillName string) (map[string]skill.Function, error) {
	if !skill.ValidName(skillName) {
		return nil, fmt.Errorf("invalid skill name %q", skillName)
	}

	out := map[string]skill.Function{}
	for _, fn := range s.Functions() {
		if !skill.ValidName(fn.Name()) {
			return nil, fmt.Errorf("import skill %s: invalid function name %q", skillName, fn.Name())
		}
		bound := fn.InSkill(skillName)
		k.skills.Add(bound)
		out[bound.Name()] = bound
	}

	k.opts.Logger.Debug("kernel.skill.imported", "skill", skillName, "functions", len(out))
	return out, nil
}

// ImportSemanticSkillFromDirectory loads parentDir/skillDir and registers
// every prompt found there. The functions are returned by name.
func (k *Kernel) ImportSemanticSkillFromDirectory(parentDir, skillDir string) (map[string]skill.Function, error) {
	fns, err := skill.LoadFromDirectory(parentDir, skillDir,
		func(skillName, name string, cfg *skill.PromptConfig, chat *template.ChatTemplate) (skill.Function, error) {
			return k.newSemanticFunction(skillName, name, cfg, chat)
		})
	if err != nil {
		return nil, err
	}

	out := make(map[string]skill.Function, len(fns))
	for _, fn := range fns {
		k.skills.Add(fn)
		out[fn.Name()] = fn
	}

	k.opts.Logger.Debug("kernel.skill.imported", "skill", skillDir, "functions", len(out), "semantic", true)
	return out, nil
}

// Skills returns the function registry.
func (k *Kernel) Skills() *skill.Collection { return k.skills }

// Func looks up a registered function.
func (k *Kernel) Func(skillName, name string) (skill.Function, error) {
	return k.skills.Get(skillName, name)
}

// CreateNewContext returns an empty context bound to the kernel logger.
func (k *Kernel) CreateNewContext(ctx context.Context) *core.Context {
	return core.NewContext(ctx, core.NewVariables(""), k.opts.Logger)
}

// Run executes fns as a pipeline: each function reads the previous result
// from the main variable. It stops at the first failure, which is returned
// and also recorded on the returned context.
func (k *Kernel) Run(ctx context.Context, vars *core.Variables, fns ...skill.Function) (*core.Context, error) {
	c := core.NewContext(ctx, vars, k.opts.Logger)

	for i, fn := range fns {
		if err := ctx.Err(); err != nil {
			c.Fail("run cancelled", err)
			return c, err
		}
		c.LogDebug("kernel.run.step", "step", i, "skill", fn.SkillName(), "function", fn.Name())
		if err := fn.Invoke(c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// RunString runs fns with input as the main variable and returns the result.
func (k *Kernel) RunString(ctx context.Context, input string, fns ...skill.Function) (string, error) {
	c, err := k.Run(ctx, core.NewVariables(input), fns...)
	if err != nil {
		return "", err
	}
	return c.Result(), nil
}

// InvokeFunctionCall runs the native function a model asked for. Names are
// resolved with Collection.Find, so "Skill-function" and unique bare names
// both work.
func (k *Kernel) InvokeFunctionCall(c *core.Context, call core.FunctionCall) (string, error) {
	fn, err := k.skills.Find(call.Name)
	if err == nil && fn.IsSemantic() {
		err = &skill.FunctionError{
			Skill:    fn.SkillName(),
			Function: fn.Name(),
			Message:  "semantic functions cannot be called by the model",
			Code:     skill.CodeNotFound,
			Err:      skill.ErrFunctionNotFound,
		}
	}
	if err != nil {
		c.Fail(err.Error(), err)
		return "", err
	}
	return skill.InvokeCall(c, fn, call)
}

// InvokeTemplateFunction implements template.FunctionInvoker.
func (k *Kernel) InvokeTemplateFunction(c *core.Context, name string) (string, error) {
	fn, err := k.skills.Find(name)
	if err != nil {
		return "", err
	}
	if err := fn.Invoke(c); err != nil {
		return "", err
	}
	return c.Result(), nil
}

// Chat runs fn with automatic function calling. While the model answers
// with function calls, the calls are dispatched to native functions, the
// calls and their results are appended to the run's conversation (see
// SemanticFunction.Conversation) and the model is asked again. A nil defs
// offers every registered native function. The loop is bounded by
// Options.MaxModelCalls.
//
// A failing native function does not end the loop: its error is reported to
// the model as the function result.
func (k *Kernel) Chat(ctx context.Context, fn *skill.SemanticFunction, vars *core.Variables, defs []model.ToolDefinition) (*core.Context, error) {
	c := core.NewContext(ctx, vars, k.opts.Logger)
	defer logging.StartTimer(c.Log(), "kernel.chat", "skill", fn.SkillName(), "function", fn.Name())()
	if defs == nil {
		defs = k.skills.ToolDefinitions()
	}

	conv := fn.Conversation()
	limiter := core.NewCallLimiter(k.opts.MaxModelCalls)
	resume := false
	for {
		if err := limiter.Increment(); err != nil {
			c.Fail(err.Error(), err)
			return c, err
		}

		var err error
		if resume {
			err = fn.Resume(c, conv, defs)
		} else {
			err = fn.InvokeIn(c, conv, defs)
		}
		if err != nil {
			return c, err
		}

		calls := pendingCalls(c)
		if len(calls) == 0 {
			c.LogDebug("kernel.chat.completed", "model_calls", limiter.Count())
			return c, nil
		}

		assistant := core.Content{Role: core.RoleAssistant}
		for _, call := range calls {
			assistant.Parts = append(assistant.Parts, core.FunctionCallPart{FunctionCall: call})
		}
		conv.AddMessage(assistant)

		for _, call := range calls {
			resp := core.FunctionResponse{ID: call.ID, Name: call.Name}
			out, err := k.InvokeFunctionCall(c, call)
			if err != nil {
				c.LogWarn("kernel.chat.function_failed", "call", call.Name, "error", err.Error())
				resp.Error = err.Error()
				c.Reset()
			} else {
				resp.Response = out
			}
			conv.AddMessage(core.Content{
				Role:  core.RoleTool,
				Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: resp}},
			})
		}
		resume = true
	}
}

// pendingCalls pops the function calls a semantic function left on c.
func pendingCalls(c *core.Context) []core.FunctionCall {
	all, _ := c.Object(core.FunctionCallsKey)
	first, ok := c.PopFunctionCall()
	if !ok {
		return nil
	}
	if calls, ok := all.([]core.FunctionCall); ok && len(calls) > 0 {
		return calls
	}
	return []core.FunctionCall{*first}
}

func randomFunctionName() string {
	return "func" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
