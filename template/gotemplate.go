package template

import (
	"fmt"
	"strings"
	gotemplate "text/template"
	"text/template/parse"
)

// goFuncs are the helpers available to go-format prompts.
var goFuncs = gotemplate.FuncMap{
	"default": func(def, val string) string {
		if val == "" {
			return def
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	},
	"join": func(sep string, items ...string) string { return strings.Join(items, sep) },
}

// parseGo parses a go-format prompt. Variables are looked up
// case-insensitively, so the top-level field of every .Name reference is
// folded to lower case, matching the keys of core.Variables.Map. The
// variable names are returned as written, in order of first use.
func parseGo(text string) (*gotemplate.Template, []string, error) {
	tmpl, err := gotemplate.New("prompt").Funcs(goFuncs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, nil, fmt.Errorf("parse go template: %w", err)
	}
	if tmpl.Tree == nil {
		return tmpl, nil, nil
	}

	var names []string
	seen := map[string]bool{}
	eachField(tmpl.Tree.Root, func(n *parse.FieldNode) {
		key := strings.ToLower(n.Ident[0])
		if !seen[key] {
			seen[key] = true
			names = append(names, n.Ident[0])
		}
		n.Ident[0] = key
	})
	return tmpl, names, nil
}

// renderGo executes tmpl over the variables. Missing variables render empty.
func renderGo(tmpl *gotemplate.Template, vars map[string]string) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// eachField calls fn for every field reference (.name) under n.
func eachField(n parse.Node, fn func(*parse.FieldNode)) {
	switch n := n.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			eachField(c, fn)
		}
	case *parse.ActionNode:
		eachField(n.Pipe, fn)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			eachField(cmd, fn)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			eachField(arg, fn)
		}
	case *parse.FieldNode:
		fn(n)
	case *parse.IfNode:
		eachField(n.Pipe, fn)
		eachField(n.List, fn)
		eachField(n.ElseList, fn)
	case *parse.RangeNode:
		eachField(n.Pipe, fn)
		eachField(n.List, fn)
		eachField(n.ElseList, fn)
	case *parse.WithNode:
		eachField(n.Pipe, fn)
		eachField(n.List, fn)
		eachField(n.ElseList, fn)
	}
}
