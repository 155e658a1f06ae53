package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/whisper/backend/internal/model/persona"
)

// UserInputKey is the template variable the user's text is bound to.
const UserInputKey = "user_input"

// PromptTemplate defines the structure for persona prompts
type PromptTemplate struct {
	Intro      string
	Guidelines []string
}

// PersonaPromptManager manages prompt templates for different personas
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a new prompt manager with default templates
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}

	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildPrompt renders the persona instructions followed by a transcript stub
// that ends with the assistant label. The user's text goes in the single
// {user_input} placeholder.
func (pm *PersonaPromptManager) BuildPrompt(p persona.Persona) string {
	template, err := pm.GetPromptTemplate(p.ID)
	if err != nil {
		template = basicTemplate(p)
	}

	return fmt.Sprintf("\n%s\n%s\n\n\n%s: {%s}\n%s:",
		template.Intro,
		strings.Join(template.Guidelines, "\n"),
		p.UserLabel,
		UserInputKey,
		p.AssistantLabel,
	)
}

// basicTemplate builds a template from the persona fields when no curated one exists.
func basicTemplate(p persona.Persona) *PromptTemplate {
	return &PromptTemplate{
		Intro:      fmt.Sprintf("You are %s, %s.", p.Name, p.Title),
		Guidelines: p.Guidelines,
	}
}

// loadDefaultTemplates loads the curated templates for built-in personas
func (pm *PersonaPromptManager) loadDefaultTemplates() {
	sage := persona.Default()
	pm.templates[persona.DrSageID] = &PromptTemplate{
		Intro:      "You are Dr. Sage, a compassionate and professional therapist.",
		Guidelines: sage.Guidelines,
	}
}
