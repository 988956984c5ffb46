package core

import (
	"sort"
	"strings"
	"sync"
)

// MainKey is the variable holding a function's primary input and output.
const MainKey = "input"

// Variables is a case-insensitive set of named string values passed into
// prompt templates and native functions. The value stored under MainKey is
// the "main" value: functions read their input from it and write their
// result back to it.
type Variables struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewVariables creates a variable set whose main value is input.
func NewVariables(input string) *Variables {
	return &Variables{values: map[string]string{MainKey: input}}
}

// VariablesFromMap builds a variable set from a plain map.
func VariablesFromMap(m map[string]string) *Variables {
	v := NewVariables("")
	for k, val := range m {
		v.Set(k, val)
	}
	return v
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns the value stored under name.
func (v *Variables) Get(name string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.values[normalizeKey(name)]
	return val, ok
}

// Set stores value under name. An empty value is kept as an explicit empty string.
func (v *Variables) Set(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[normalizeKey(name)] = value
}

// Delete removes name from the set.
func (v *Variables) Delete(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.values, normalizeKey(name))
}

// Input returns the main value.
func (v *Variables) Input() string {
	val, _ := v.Get(MainKey)
	return val
}

// Update replaces the main value.
func (v *Variables) Update(input string) {
	v.Set(MainKey, input)
}

// Merge copies every variable of other into v; values from other win.
func (v *Variables) Merge(other *Variables) {
	if other == nil || other == v {
		return
	}
	snapshot := other.Map()
	v.mu.Lock()
	defer v.mu.Unlock()
	for k, val := range snapshot {
		v.values[k] = val
	}
}

// Clone returns an independent copy.
func (v *Variables) Clone() *Variables {
	return &Variables{values: v.Map()}
}

// Map returns a copy of the underlying values keyed by lower-cased name.
func (v *Variables) Map() map[string]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]string, len(v.values))
	for k, val := range v.values {
		out[k] = val
	}
	return out
}

// Names returns the sorted variable names.
func (v *Variables) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.values))
	for k := range v.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String returns the main value.
func (v *Variables) String() string { return v.Input() }
