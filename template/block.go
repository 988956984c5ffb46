package template

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockKind identifies the kind of a parsed block.
type BlockKind int

const (
	KindText BlockKind = iota
	KindVariable
	KindValue
	KindFunction
)

func (k BlockKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindVariable:
		return "variable"
	case KindValue:
		return "value"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// Block is one parsed element of a template.
//
// Text holds the raw text for text blocks and the unescaped literal for value
// blocks. Name holds the variable name or the function name. Arg is the
// optional single argument of a function block.
type Block struct {
	Kind BlockKind
	Text string
	Name string
	Arg  *Block
}

var (
	varNamePattern  = regexp.MustCompile(`^[0-9A-Za-z_]+$`)
	funcNamePattern = regexp.MustCompile(`^[0-9A-Za-z_]+(\.[0-9A-Za-z_]+)?$`)
)

// SyntaxError reports an invalid block.
type SyntaxError struct {
	Offset  int    `json:"offset"`  // byte offset of the opening braces
	Block   string `json:"block"`   // raw block content
	Message string `json:"message"` // what is wrong
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d in {{%s}}: %s", e.Offset, e.Block, e.Message)
}

// Parse splits text into blocks. Unterminated "{{" and empty "{{}}" are kept
// as literal text.
func Parse(text string) ([]Block, error) {
	var (
		blocks []Block
		buf    strings.Builder
	)

	flushText := func() {
		if buf.Len() > 0 {
			blocks = append(blocks, Block{Kind: KindText, Text: buf.String()})
			buf.Reset()
		}
	}

	i := 0
	for i < len(text) {
		start := strings.Index(text[i:], "{{")
		if start < 0 {
			buf.WriteString(text[i:])
			break
		}
		start += i
		buf.WriteString(text[i:start])

		end := findBlockEnd(text, start+2)
		if end < 0 {
			buf.WriteString(text[start:])
			break
		}

		raw := text[start+2 : end]
		code := strings.TrimSpace(raw)
		if code == "" {
			buf.WriteString(text[start : end+2])
			i = end + 2
			continue
		}

		block, err := parseCode(code)
		if err != nil {
			return nil, &SyntaxError{Offset: start, Block: raw, Message: err.Error()}
		}
		flushText()
		blocks = append(blocks, block)
		i = end + 2
	}
	flushText()

	return blocks, nil
}

// findBlockEnd returns the index of the "}}" closing the block whose content
// starts at from. Closing braces inside quoted values do not count. When a
// quote is left open the first "}}" closes the block so the quote is
// reported as a syntax error. -1 means the block is unterminated.
func findBlockEnd(text string, from int) int {
	var quote byte
	for j := from; j < len(text); j++ {
		c := text[j]
		switch {
		case quote != 0 && c == '\\':
			j++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '}' && j+1 < len(text) && text[j+1] == '}':
			return j
		}
	}
	if quote != 0 {
		if idx := strings.Index(text[from:], "}}"); idx >= 0 {
			return from + idx
		}
	}
	return -1
}

func parseCode(code string) (Block, error) {
	tokens, err := tokenize(code)
	if err != nil {
		return Block{}, err
	}

	first, err := parseToken(tokens[0])
	if err != nil {
		return Block{}, err
	}

	switch len(tokens) {
	case 1:
		return first, nil
	case 2:
		if first.Kind != KindFunction {
			return Block{}, fmt.Errorf("unexpected token %q after %s", tokens[1], first.Kind)
		}
		arg, err := parseToken(tokens[1])
		if err != nil {
			return Block{}, err
		}
		if arg.Kind == KindFunction {
			return Block{}, fmt.Errorf("function argument %q must be a variable or a value", tokens[1])
		}
		first.Arg = &arg
		return first, nil
	default:
		return Block{}, fmt.Errorf("functions support only one argument, got %d", len(tokens)-1)
	}
}

// tokenize splits block code on whitespace outside of quotes.
func tokenize(code string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		quote  byte
	)
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(code) {
				i++
				cur.WriteByte(code[i])
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			if cur.Len() > 0 {
				return nil, fmt.Errorf("unexpected quote in %q", cur.String()+string(c))
			}
			quote = c
			cur.WriteByte(c)
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			if cur.Len() > 0 && (cur.String()[0] == '\'' || cur.String()[0] == '"') {
				return nil, fmt.Errorf("unexpected text after quoted value %s", cur.String())
			}
			cur.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quoted value %s", cur.String())
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

func parseToken(tok string) (Block, error) {
	switch tok[0] {
	case '$':
		name := tok[1:]
		if name == "" {
			return Block{}, fmt.Errorf("variable name is empty")
		}
		if !varNamePattern.MatchString(name) {
			return Block{}, fmt.Errorf("invalid variable name %q", name)
		}
		return Block{Kind: KindVariable, Name: name}, nil
	case '\'', '"':
		return Block{Kind: KindValue, Text: unescape(tok[1 : len(tok)-1])}, nil
	default:
		if !funcNamePattern.MatchString(tok) {
			return Block{}, fmt.Errorf("invalid function name %q", tok)
		}
		return Block{Kind: KindFunction, Name: tok}, nil
	}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
