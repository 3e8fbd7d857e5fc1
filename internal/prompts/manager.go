package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// PromptProvider is implemented by the prompt manager and by test fakes.
type PromptProvider interface {
	BuildPrompt(mode string, data map[string]string) (string, error)
	GetTemplates() []string
}

type Manager struct {
	prompts map[string]string // mode -> complete prompt template
}

// loaded prompt template
type PromptTemplate struct {
	BasePrompt string `yaml:"base_prompt"`
	Template   string `yaml:"template"`
}

// creates a new prompt manager and loads templates
func NewManager() (*Manager, error) {
	pm := &Manager{
		prompts: make(map[string]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// BuildPrompt fills the template for the given mode with the supplied
// values. Simple string replacement instead of template execution.
func (pm *Manager) BuildPrompt(mode string, data map[string]string) (string, error) {
	promptTemplate, exists := pm.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	result := promptTemplate
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}

	return result, nil
}

// GetTemplates lists the loaded template modes.
func (pm *Manager) GetTemplates() []string {
	modes := make([]string, 0, len(pm.prompts))
	for mode := range pm.prompts {
		modes = append(modes, mode)
	}
	return modes
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *Manager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		var fullPrompt strings.Builder
		if promptTemplate.BasePrompt != "" {
			fullPrompt.WriteString(promptTemplate.BasePrompt)
			fullPrompt.WriteString("\n\n")
		}
		fullPrompt.WriteString(promptTemplate.Template)

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[name] = fullPrompt.String()
	}

	return nil
}
