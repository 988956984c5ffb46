package skill

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/hupe1980/semkernel/template"
)

// PromptFile is the file holding a semantic function's prompt.
const PromptFile = "skprompt.txt"

var configFiles = []string{"config.json", "config.yaml", "config.yml"}

var namePattern = regexp.MustCompile(`^[0-9A-Za-z_]+$`)

// ValidName reports whether name may be used as a skill or function name.
func ValidName(name string) bool { return namePattern.MatchString(name) }

// SemanticFactory turns a loaded prompt into a Function. The kernel uses it
// to bind chat services before registration.
type SemanticFactory func(skillName, name string, config *PromptConfig, chat *template.ChatTemplate) (Function, error)

// LoadFromDirectory loads the semantic skill stored in parentDir/skillDir.
// Every subdirectory containing skprompt.txt becomes a function named after
// the subdirectory, configured by an optional config.json or config.yaml.
// Subdirectories without a prompt are skipped. A nil factory returns plain
// *SemanticFunction values. The result is sorted by function name.
func LoadFromDirectory(parentDir, skillDir string, factory SemanticFactory) ([]Function, error) {
	if !ValidName(skillDir) {
		return nil, fmt.Errorf("invalid skill name %q", skillDir)
	}

	root := filepath.Join(parentDir, skillDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("load skill %s: %w", skillDir, err)
	}

	if factory == nil {
		factory = func(skillName, name string, config *PromptConfig, chat *template.ChatTemplate) (Function, error) {
			return NewSemanticFunction(skillName, name, config, chat), nil
		}
	}

	var fns []Function
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		prompt, err := os.ReadFile(filepath.Join(dir, PromptFile))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load skill %s: %w", skillDir, err)
		}
		if !ValidName(entry.Name()) {
			return nil, fmt.Errorf("load skill %s: invalid function name %q", skillDir, entry.Name())
		}

		config, err := loadDirConfig(dir)
		if err != nil {
			return nil, fmt.Errorf("load skill %s: %w", skillDir, err)
		}

		user, err := template.NewWithFormat(string(prompt), config.TemplateFormat)
		if err != nil {
			return nil, fmt.Errorf("load skill %s: function %s: %w", skillDir, entry.Name(), err)
		}

		fn, err := factory(skillDir, entry.Name(), config, template.NewChatTemplate(user, config.Completion.ChatSystemPrompt))
		if err != nil {
			return nil, fmt.Errorf("load skill %s: function %s: %w", skillDir, entry.Name(), err)
		}
		fns = append(fns, fn)
	}

	sort.Slice(fns, func(i, j int) bool { return fns[i].Name() < fns[j].Name() })
	return fns, nil
}

func loadDirConfig(dir string) (*PromptConfig, error) {
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadPromptConfig(path)
	}
	return DefaultPromptConfig(), nil
}
