package template

import (
	"fmt"
	"strings"
	gotemplate "text/template"

	"github.com/hupe1980/semkernel/core"
)

// Template formats understood by NewWithFormat.
const (
	FormatSemanticKernel = "semantic-kernel"
	FormatGo             = "go"
)

// FunctionInvoker resolves and runs functions referenced from templates.
// The context passed in holds a private copy of the caller's variables; the
// returned string is rendered in place of the block.
type FunctionInvoker interface {
	InvokeTemplateFunction(ctx *core.Context, name string) (string, error)
}

// PromptTemplate is a parsed prompt.
type PromptTemplate struct {
	text   string
	format string
	blocks []Block
	goTmpl *gotemplate.Template
	goVars []string
}

// New parses text in the default block syntax.
func New(text string) (*PromptTemplate, error) {
	return NewWithFormat(text, FormatSemanticKernel)
}

// MustNew is like New but panics on a syntax error. It is meant for
// templates that are compiled into the program.
func MustNew(text string) *PromptTemplate {
	t, err := New(text)
	if err != nil {
		panic(err)
	}
	return t
}

// NewWithFormat parses text in the given format. An empty format selects
// the default block syntax.
func NewWithFormat(text, format string) (*PromptTemplate, error) {
	switch format {
	case "", FormatSemanticKernel:
		blocks, err := Parse(text)
		if err != nil {
			return nil, err
		}
		return &PromptTemplate{text: text, format: FormatSemanticKernel, blocks: blocks}, nil
	case FormatGo:
		tmpl, vars, err := parseGo(text)
		if err != nil {
			return nil, err
		}
		return &PromptTemplate{text: text, format: FormatGo, goTmpl: tmpl, goVars: vars}, nil
	default:
		return nil, fmt.Errorf("unknown template format %q", format)
	}
}

// Text returns the template source.
func (t *PromptTemplate) Text() string { return t.text }

// Format returns the template format.
func (t *PromptTemplate) Format() string { return t.format }

// Blocks returns the parsed blocks. Go-format templates have none.
func (t *PromptTemplate) Blocks() []Block { return t.blocks }

// Variables returns the names of the variables the template references, in
// order of first use.
func (t *PromptTemplate) Variables() []string {
	if t.goTmpl != nil {
		return t.goVars
	}
	var names []string
	seen := map[string]bool{}
	add := func(b *Block) {
		if b == nil || b.Kind != KindVariable {
			return
		}
		key := strings.ToLower(b.Name)
		if !seen[key] {
			seen[key] = true
			names = append(names, b.Name)
		}
	}
	for i := range t.blocks {
		add(&t.blocks[i])
		add(t.blocks[i].Arg)
	}
	return names
}

// Render renders the template against the context's variables. invoker may
// be nil when the template calls no functions.
func (t *PromptTemplate) Render(c *core.Context, invoker FunctionInvoker) (string, error) {
	if t.goTmpl != nil {
		return renderGo(t.goTmpl, c.Variables.Map())
	}

	var b strings.Builder
	for _, block := range t.blocks {
		switch block.Kind {
		case KindText:
			b.WriteString(block.Text)
		case KindValue:
			b.WriteString(block.Text)
		case KindVariable:
			b.WriteString(lookupVariable(c, block.Name))
		case KindFunction:
			out, err := t.renderFunction(c, invoker, block)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
		}
	}
	return b.String(), nil
}

func (t *PromptTemplate) renderFunction(c *core.Context, invoker FunctionInvoker, block Block) (string, error) {
	if invoker == nil {
		return "", fmt.Errorf("template calls function %s but no function invoker is configured", block.Name)
	}

	vars := c.Variables.Clone()
	if block.Arg != nil {
		switch block.Arg.Kind {
		case KindVariable:
			vars.Update(lookupVariable(c, block.Arg.Name))
		case KindValue:
			vars.Update(block.Arg.Text)
		}
	}

	child := c.WithVariables(vars)
	out, err := invoker.InvokeTemplateFunction(child, block.Name)
	if err != nil {
		return "", fmt.Errorf("render function %s: %w", block.Name, err)
	}
	return out, nil
}

func lookupVariable(c *core.Context, name string) string {
	if v, ok := c.Variables.Get(name); ok {
		return v
	}
	c.LogWarn("template.variable.missing", "variable", name)
	return ""
}
