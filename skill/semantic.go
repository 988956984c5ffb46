package skill

import (
	"sync"
	"time"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/logging"
	"github.com/hupe1980/semkernel/model"
	"github.com/hupe1980/semkernel/template"
)

// SemanticFunction is a prompt bound to a chat model.
//
// Each invocation renders the user template, sends the system prompt, the
// chat history and the rendered user message to the model, and then:
//   - on a text reply, stores the reply as the main variable and appends the
//     user message and the reply to the conversation;
//   - on a function call reply (function calling enabled), appends the user
//     message to the conversation and stores the first call under
//     core.FunctionCallKey and all calls under core.FunctionCallsKey, leaving
//     the main variable unchanged;
//   - on a model error, fails the context with MODEL_ERROR.
//
// By default the conversation is a per-invocation copy of the chat template,
// so runs do not see each other's turns. With SetKeepHistory(true) the
// template itself is the conversation and the history grows across runs.
type SemanticFunction struct {
	skill  string
	name   string
	config *PromptConfig
	chat   *template.ChatTemplate

	mu          sync.RWMutex
	service     model.Model
	invoker     template.FunctionInvoker
	tools       []model.ToolDefinition
	keepHistory bool
}

// NewSemanticFunction creates an unbound semantic function. A nil config
// selects DefaultPromptConfig.
func NewSemanticFunction(skillName, name string, config *PromptConfig, chat *template.ChatTemplate) *SemanticFunction {
	if config == nil {
		config = DefaultPromptConfig()
	}
	if chat == nil {
		chat = template.NewChatTemplate(nil, config.Completion.ChatSystemPrompt)
	}
	return &SemanticFunction{skill: skillName, name: name, config: config, chat: chat}
}

func (f *SemanticFunction) Name() string        { return f.name }
func (f *SemanticFunction) SkillName() string   { return f.skill }
func (f *SemanticFunction) Description() string { return f.config.Description }
func (f *SemanticFunction) IsSemantic() bool    { return true }

// Parameters returns the configured input parameters, or the variables the
// user template references when the config lists none.
func (f *SemanticFunction) Parameters() []Parameter {
	if len(f.config.Input.Parameters) > 0 {
		return f.config.Parameters()
	}
	tmpl := f.chat.UserTemplate()
	if tmpl == nil {
		return nil
	}
	names := tmpl.Variables()
	params := make([]Parameter, 0, len(names))
	for _, n := range names {
		params = append(params, Parameter{Name: n, Type: "string"})
	}
	return params
}

// Config returns the prompt configuration.
func (f *SemanticFunction) Config() *PromptConfig { return f.config }

// ChatTemplate exposes the chat template so callers can seed or extend the
// history between invocations.
func (f *SemanticFunction) ChatTemplate() *template.ChatTemplate { return f.chat }

// SetKeepHistory controls whether invocations append their turns to the
// chat template.
func (f *SemanticFunction) SetKeepHistory(keep bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keepHistory = keep
}

// KeepsHistory reports whether invocations append to the chat template.
func (f *SemanticFunction) KeepsHistory() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.keepHistory
}

// Conversation returns the template one run appends its turns to: the chat
// template when the function keeps history, otherwise a fresh copy of it.
func (f *SemanticFunction) Conversation() *template.ChatTemplate {
	if f.KeepsHistory() {
		return f.chat
	}
	return f.chat.Clone()
}

// SetChatService binds the model used by Invoke.
func (f *SemanticFunction) SetChatService(m model.Model) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.service = m
}

// ChatService returns the bound model.
func (f *SemanticFunction) ChatService() model.Model {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.service
}

// SetInvoker sets the resolver for functions called from the template.
func (f *SemanticFunction) SetInvoker(inv template.FunctionInvoker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoker = inv
}

// SetTools attaches the function definitions offered to the model when
// function calling is enabled.
func (f *SemanticFunction) SetTools(defs []model.ToolDefinition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = defs
}

// Invoke runs the function with the attached tool definitions.
func (f *SemanticFunction) Invoke(c *core.Context) error {
	f.mu.RLock()
	tools := f.tools
	f.mu.RUnlock()
	return f.invoke(c, f.Conversation(), tools, true)
}

// InvokeWithFunctions runs the function offering defs instead of the
// attached tool definitions.
func (f *SemanticFunction) InvokeWithFunctions(c *core.Context, defs []model.ToolDefinition) error {
	return f.invoke(c, f.Conversation(), defs, true)
}

// InvokeIn is InvokeWithFunctions on an explicit conversation, typically one
// obtained from Conversation and extended with function results in between.
func (f *SemanticFunction) InvokeIn(c *core.Context, conv *template.ChatTemplate, defs []model.ToolDefinition) error {
	return f.invoke(c, conv, defs, true)
}

// Resume sends conv without rendering a new user message. It continues a
// conversation after function results have been appended.
func (f *SemanticFunction) Resume(c *core.Context, conv *template.ChatTemplate, defs []model.ToolDefinition) error {
	return f.invoke(c, conv, defs, false)
}

func (f *SemanticFunction) invoke(c *core.Context, conv *template.ChatTemplate, defs []model.ToolDefinition, renderUser bool) error {
	f.mu.RLock()
	service, invoker := f.service, f.invoker
	f.mu.RUnlock()

	if service == nil {
		return fail(c, &FunctionError{
			Skill:    f.skill,
			Function: f.name,
			Message:  "no chat service bound",
			Code:     CodeModel,
		})
	}

	applyDefaults(c, f.config.Parameters())

	var (
		userText string
		messages []core.Content
	)
	if renderUser {
		var err error
		userText, err = conv.RenderUser(c, invoker)
		if err != nil {
			return fail(c, &FunctionError{
				Skill:    f.skill,
				Function: f.name,
				Message:  "render prompt: " + err.Error(),
				Code:     CodeExecution,
				Err:      err,
			})
		}
	}
	messages = conv.HistoryMessages()
	if userText != "" {
		messages = append(messages, core.NewTextContent(core.RoleUser, userText))
	}

	settings := f.config.Settings()
	req := model.Request{Messages: messages, Settings: settings}
	if settings.FunctionCallingEnabled() {
		req.Tools = defs
	}

	info := service.Info()
	start := time.Now()
	resp, err := model.Collect(c.Context(), service, req)
	tokens := 0
	if err == nil && resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	logging.ModelCall(c.Log(), info.Name, tokens, time.Since(start), err,
		"skill", f.skill, "function", f.name, "provider", info.Provider)
	if err != nil {
		return fail(c, &FunctionError{
			Skill:    f.skill,
			Function: f.name,
			Message:  err.Error(),
			Code:     CodeModel,
			Err:      err,
		})
	}

	if userText != "" {
		conv.AddUserMessage(userText)
	}

	if calls := resp.Content.FunctionCalls(); len(calls) > 0 && settings.FunctionCallingEnabled() {
		first := calls[0]
		c.SetObject(core.FunctionCallKey, &first)
		c.SetObject(core.FunctionCallsKey, calls)
		c.LogDebug("function.call.requested", "skill", f.skill, "function", f.name, "call", first.Name)
		return nil
	}

	text := resp.Content.Text()
	conv.AddAssistantMessage(text)
	c.Variables.Update(text)
	return nil
}
