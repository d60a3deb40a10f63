package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"intervai/server/internal/models"
)

// embeds the interviewer instruction file into the binary at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

const interviewTemplate = "templates/interview.yaml"

// PromptProvider builds the system instruction sent ahead of every transcript.
type PromptProvider interface {
	ComposeSystemPrompt(mode, level string) string
	BuildMessages(transcript []models.Message, mode, level string) []models.Message
	GetTemplates() map[string]map[string]string
}

type PromptManager struct {
	base   string
	modes  map[string]string
	levels map[string]string
	rules  string
}

// loaded prompt template
type PromptTemplate struct {
	BasePrompt string            `yaml:"base_prompt"`
	Modes      map[string]string `yaml:"modes"`
	Levels     map[string]string `yaml:"levels"`
	Rules      string            `yaml:"rules"`
}

// creates a new prompt manager and loads the embedded template
func NewPromptManager() (*PromptManager, error) {
	data, err := templateFS.ReadFile(interviewTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", interviewTemplate, err)
	}
	return newPromptManagerFromYAML(data)
}

func newPromptManagerFromYAML(data []byte) (*PromptManager, error) {
	var tmpl PromptTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	if strings.TrimSpace(tmpl.Rules) == "" {
		return nil, fmt.Errorf("prompt template has no rules")
	}

	pm := &PromptManager{
		base:   strings.TrimSpace(tmpl.BasePrompt),
		modes:  make(map[string]string, len(tmpl.Modes)),
		levels: make(map[string]string, len(tmpl.Levels)),
		rules:  strings.TrimSpace(tmpl.Rules),
	}
	for mode, fragment := range tmpl.Modes {
		pm.modes[mode] = strings.TrimSpace(fragment)
	}
	for level, fragment := range tmpl.Levels {
		pm.levels[level] = strings.TrimSpace(fragment)
	}
	return pm, nil
}

// ComposeSystemPrompt concatenates the base prompt, the mode and level
// fragments and the fixed rules. Unknown modes or levels contribute nothing.
func (pm *PromptManager) ComposeSystemPrompt(mode, level string) string {
	var b strings.Builder
	if pm.base != "" {
		b.WriteString(pm.base)
		b.WriteString("\n\n")
	}
	if fragment, ok := pm.modes[mode]; ok {
		b.WriteString("Interview Mode: ")
		b.WriteString(mode)
		b.WriteString("\n")
		b.WriteString(fragment)
		b.WriteString("\n")
	}
	if fragment, ok := pm.levels[level]; ok {
		b.WriteString(fragment)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(pm.rules)
	return b.String()
}

// BuildMessages returns [system, transcript...] in transcript order.
func (pm *PromptManager) BuildMessages(transcript []models.Message, mode, level string) []models.Message {
	messages := make([]models.Message, 0, len(transcript)+1)
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: pm.ComposeSystemPrompt(mode, level),
	})
	return append(messages, transcript...)
}

// GetTemplates returns copies of the loaded fragments keyed by "modes" and "levels".
func (pm *PromptManager) GetTemplates() map[string]map[string]string {
	out := map[string]map[string]string{
		"modes":  make(map[string]string, len(pm.modes)),
		"levels": make(map[string]string, len(pm.levels)),
	}
	for k, v := range pm.modes {
		out["modes"][k] = v
	}
	for k, v := range pm.levels {
		out["levels"][k] = v
	}
	return out
}
