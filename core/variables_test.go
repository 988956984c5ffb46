package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariables_CaseInsensitive(t *testing.T) {
	v := NewVariables("hello")
	v.Set("City", "Lisbon")

	got, ok := v.Get("city")
	assert.True(t, ok)
	assert.Equal(t, "Lisbon", got)

	got, ok = v.Get("CITY")
	assert.True(t, ok)
	assert.Equal(t, "Lisbon", got)
	assert.Equal(t, "hello", v.Input())
	assert.Equal(t, "hello", v.String())
}

func TestVariables_EmptyValueIsKept(t *testing.T) {
	v := NewVariables("")
	v.Set("month", "")

	got, ok := v.Get("month")
	assert.True(t, ok)
	assert.Empty(t, got)

	_, ok = v.Get("missing")
	assert.False(t, ok)
}

func TestVariables_MergeAndClone(t *testing.T) {
	a := NewVariables("a")
	a.Set("x", "1")
	b := NewVariables("b")
	b.Set("y", "2")

	clone := a.Clone()
	a.Merge(b)

	assert.Equal(t, "b", a.Input())
	assert.Equal(t, []string{"input", "x", "y"}, a.Names())

	// clone is unaffected by later mutation
	assert.Equal(t, "a", clone.Input())
	_, ok := clone.Get("y")
	assert.False(t, ok)
}

func TestVariablesFromMap(t *testing.T) {
	v := VariablesFromMap(map[string]string{"User_Input": "hi"})
	got, ok := v.Get("user_input")
	assert.True(t, ok)
	assert.Equal(t, "hi", got)
	assert.Equal(t, "", v.Input())

	v.Delete("USER_INPUT")
	_, ok = v.Get("user_input")
	assert.False(t, ok)
}
