package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/semkernel/core"
)

// MockModel is a lightweight in‑memory Model useful for tests and offline runs.
//
// Replies are chosen in this order:
//  1. the next queued response (QueueResponse / QueueFunctionCall)
//  2. a canned reply registered for the last user text (AddResponse)
//  3. "Mock response to: <last user text>"
//
// Every request is recorded and available through Requests.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	queue     []core.Content
	requests  []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a user prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// QueueResponse enqueues an assistant text reply.
func (m *MockModel) QueueResponse(text string) {
	m.QueueContent(core.NewTextContent(core.RoleAssistant, text))
}

// QueueFunctionCall enqueues an assistant reply requesting a function call.
// A missing call ID is filled in.
func (m *MockModel) QueueFunctionCall(name, arguments string) {
	m.QueueContent(core.Content{
		Role: core.RoleAssistant,
		Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        "call_" + uuid.NewString(),
			Name:      name,
			Arguments: arguments,
		}}},
	})
}

// QueueContent enqueues an arbitrary assistant reply.
func (m *MockModel) QueueContent(c core.Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, c)
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model; emits optional streaming char chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var (
		reply  core.Content
		queued bool
	)
	if len(m.queue) > 0 {
		reply, m.queue = m.queue[0], m.queue[1:]
		queued = true
	}
	var inputText, canned string
	if len(req.Messages) > 0 {
		inputText = lastUserText(req.Messages)
		canned = m.responses[inputText]
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		if !queued {
			full := canned
			if full == "" {
				full = fmt.Sprintf("Mock response to: %s", inputText)
			}
			reply = core.NewTextContent(core.RoleAssistant, full)
		}
		finish := "stop"
		if len(reply.FunctionCalls()) > 0 {
			finish = "tool_calls"
		}
		if req.Stream {
			for _, r := range reply.Text() {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.NewTextContent(core.RoleAssistant, string(r)),
				}:
				}
			}
		}
		respCh <- Response{
			ID:           uuid.NewString(),
			Partial:      false,
			Content:      reply,
			FinishReason: finish,
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

func lastUserText(messages []core.Content) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleUser {
			return messages[i].Text()
		}
	}
	return messages[len(messages)-1].Text()
}
