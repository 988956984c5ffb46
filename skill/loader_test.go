package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semkernel/template"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadFromDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "WinePlugin", "Somellier", "skprompt.txt"), "Recommend food for {{$input}}.")
	writeFile(t, filepath.Join(root, "WinePlugin", "Somellier", "config.json"),
		`{"schema":1,"type":"completion","description":"Pairs wine","completion":{"max_tokens":300,"temperature":0.2}}`)
	writeFile(t, filepath.Join(root, "WinePlugin", "Cellar", "skprompt.txt"), "List wines like {{$input}}.")
	writeFile(t, filepath.Join(root, "WinePlugin", "Cellar", "config.yaml"), "description: Cellar lookup\n")
	writeFile(t, filepath.Join(root, "WinePlugin", "notes", "README.md"), "no prompt here")
	writeFile(t, filepath.Join(root, "WinePlugin", "stray.txt"), "ignored")

	fns, err := LoadFromDirectory(root, "WinePlugin", nil)
	require.NoError(t, err)
	require.Len(t, fns, 2)

	assert.Equal(t, "Cellar", fns[0].Name())
	assert.Equal(t, "Cellar lookup", fns[0].Description())
	assert.Equal(t, "Somellier", fns[1].Name())
	assert.Equal(t, "WinePlugin", fns[1].SkillName())

	sem, ok := fns[1].(*SemanticFunction)
	require.True(t, ok)
	assert.EqualValues(t, 300, sem.Config().Settings().MaxTokens)
	assert.Equal(t, "Recommend food for {{$input}}.", sem.ChatTemplate().UserTemplate().Text())
}

func TestLoadFromDirectory_Factory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Skill", "Fn", "skprompt.txt"), "{{$input}}")

	var seen []string
	fns, err := LoadFromDirectory(root, "Skill", func(skillName, name string, cfg *PromptConfig, chat *template.ChatTemplate) (Function, error) {
		seen = append(seen, skillName+"/"+name)
		return NewSemanticFunction(skillName, name, cfg, chat), nil
	})
	require.NoError(t, err)
	assert.Len(t, fns, 1)
	assert.Equal(t, []string{"Skill/Fn"}, seen)
}

func TestLoadFromDirectory_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := LoadFromDirectory(root, "Missing", nil)
	require.Error(t, err)

	_, err = LoadFromDirectory(root, "bad-name", nil)
	require.Error(t, err)

	writeFile(t, filepath.Join(root, "Skill", "bad-fn", "skprompt.txt"), "x")
	_, err = LoadFromDirectory(root, "Skill", nil)
	require.Error(t, err)

	root = t.TempDir()
	writeFile(t, filepath.Join(root, "Skill", "Fn", "skprompt.txt"), "{{$}}")
	_, err = LoadFromDirectory(root, "Skill", nil)
	var synErr *template.SyntaxError
	require.ErrorAs(t, err, &synErr)

	root = t.TempDir()
	writeFile(t, filepath.Join(root, "Skill", "Fn", "skprompt.txt"), "x")
	writeFile(t, filepath.Join(root, "Skill", "Fn", "config.json"), "{")
	_, err = LoadFromDirectory(root, "Skill", nil)
	require.Error(t, err)
}
