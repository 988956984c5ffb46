package skill

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/semkernel/core"
	"github.com/hupe1980/semkernel/model"
)

// Collection is the registry of functions grouped by skill. Skill and
// function names are matched case-insensitively. It is safe for concurrent
// use.
type Collection struct {
	mu     sync.RWMutex
	skills map[string]map[string]Function
}

// NewCollection creates an empty registry.
func NewCollection() *Collection {
	return &Collection{skills: map[string]map[string]Function{}}
}

// Add registers fn. A function with the same skill and name is replaced.
func (c *Collection) Add(fn Function) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sk := strings.ToLower(fn.SkillName())
	if c.skills[sk] == nil {
		c.skills[sk] = map[string]Function{}
	}
	c.skills[sk][strings.ToLower(fn.Name())] = fn
}

// Get returns the function registered as skill/name.
func (c *Collection) Get(skillName, name string) (Function, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if fn, ok := c.skills[strings.ToLower(skillName)][strings.ToLower(name)]; ok {
		return fn, nil
	}
	return nil, notFound(skillName, name)
}

// Find resolves a name chosen by a model. Qualified names ("Skill-fn" or
// "Skill.fn") are looked up directly. A bare name must be unique across all
// skills.
func (c *Collection) Find(name string) (Function, error) {
	skillName, fnName := core.FunctionCall{Name: name}.SplitName()
	if skillName != "" {
		if fn, err := c.Get(skillName, fnName); err == nil {
			return fn, nil
		}
		// Fall through: the separator may be part of a bare name.
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []Function
	key := strings.ToLower(strings.TrimSpace(name))
	for _, fns := range c.skills {
		if fn, ok := fns[key]; ok {
			matches = append(matches, fn)
		}
	}

	switch len(matches) {
	case 0:
		return nil, notFound(skillName, fnName)
	case 1:
		return matches[0], nil
	default:
		skills := make([]string, len(matches))
		for i, m := range matches {
			skills[i] = m.SkillName()
		}
		sort.Strings(skills)
		return nil, &FunctionError{
			Function: name,
			Message:  fmt.Sprintf("ambiguous function name, found in skills %s", strings.Join(skills, ", ")),
			Code:     CodeNotFound,
			Err:      ErrFunctionNotFound,
		}
	}
}

// Skill returns the functions of one skill keyed by function name.
func (c *Collection) Skill(name string) map[string]Function {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fns := c.skills[strings.ToLower(name)]
	out := make(map[string]Function, len(fns))
	for _, fn := range fns {
		out[fn.Name()] = fn
	}
	return out
}

// Functions returns every registered function sorted by skill and name.
func (c *Collection) Functions() []Function {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Function
	for _, fns := range c.skills {
		for _, fn := range fns {
			out = append(out, fn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := strings.ToLower(out[i].SkillName()), strings.ToLower(out[j].SkillName())
		if si != sj {
			return si < sj
		}
		return strings.ToLower(out[i].Name()) < strings.ToLower(out[j].Name())
	})
	return out
}

// Views describes every registered function.
func (c *Collection) Views() []View {
	fns := c.Functions()
	views := make([]View, len(fns))
	for i, fn := range fns {
		views[i] = ViewOf(fn)
	}
	return views
}

// ToolDefinitions returns the native functions of the given skills (all
// skills when none are given) as tool definitions named "Skill-function".
func (c *Collection) ToolDefinitions(skills ...string) []model.ToolDefinition {
	want := map[string]bool{}
	for _, s := range skills {
		want[strings.ToLower(s)] = true
	}

	var defs []model.ToolDefinition
	for _, fn := range c.Functions() {
		if fn.IsSemantic() {
			continue
		}
		if len(want) > 0 && !want[strings.ToLower(fn.SkillName())] {
			continue
		}
		defs = append(defs, ToolDefinition(fn))
	}
	return defs
}
