package template

import (
	"slices"
	"sync"

	"github.com/hupe1980/semkernel/core"
)

// ChatTemplate renders the message list of a chat completion: the system
// prompt, the accumulated history and the rendered user message.
// It is safe for concurrent use.
type ChatTemplate struct {
	user         *PromptTemplate
	systemPrompt string

	mu       sync.Mutex
	messages []core.Content
}

// NewChatTemplate creates a chat template around a user message template.
func NewChatTemplate(user *PromptTemplate, systemPrompt string) *ChatTemplate {
	return &ChatTemplate{user: user, systemPrompt: systemPrompt}
}

// Clone returns a copy with its own history. The user template is shared.
func (t *ChatTemplate) Clone() *ChatTemplate {
	return &ChatTemplate{user: t.user, systemPrompt: t.systemPrompt, messages: t.Messages()}
}

// SystemPrompt returns the system prompt sent ahead of the history.
func (t *ChatTemplate) SystemPrompt() string { return t.systemPrompt }

// UserTemplate returns the template rendered into the user message.
func (t *ChatTemplate) UserTemplate() *PromptTemplate { return t.user }

// AddSystemMessage appends a system message to the history.
func (t *ChatTemplate) AddSystemMessage(text string) {
	t.AddMessage(core.NewTextContent(core.RoleSystem, text))
}

// AddUserMessage appends a user message to the history.
func (t *ChatTemplate) AddUserMessage(text string) {
	t.AddMessage(core.NewTextContent(core.RoleUser, text))
}

// AddAssistantMessage appends an assistant message to the history.
func (t *ChatTemplate) AddAssistantMessage(text string) {
	t.AddMessage(core.NewTextContent(core.RoleAssistant, text))
}

// AddMessage appends any message, including function calls and results.
func (t *ChatTemplate) AddMessage(msg core.Content) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Messages returns a copy of the history.
func (t *ChatTemplate) Messages() []core.Content {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

// HistoryMessages returns the system prompt followed by the history.
func (t *ChatTemplate) HistoryMessages() []core.Content {
	msgs := t.Messages()
	if t.systemPrompt == "" {
		return msgs
	}
	return append([]core.Content{core.NewTextContent(core.RoleSystem, t.systemPrompt)}, msgs...)
}

// RenderUser renders the user message template.
func (t *ChatTemplate) RenderUser(c *core.Context, invoker FunctionInvoker) (string, error) {
	if t.user == nil {
		return "", nil
	}
	return t.user.Render(c, invoker)
}

// RenderMessages returns the system prompt, the history and the rendered
// user message. An empty user message is left out.
func (t *ChatTemplate) RenderMessages(c *core.Context, invoker FunctionInvoker) ([]core.Content, error) {
	userText, err := t.RenderUser(c, invoker)
	if err != nil {
		return nil, err
	}
	msgs := t.HistoryMessages()
	if userText != "" {
		msgs = append(msgs, core.NewTextContent(core.RoleUser, userText))
	}
	return msgs, nil
}
