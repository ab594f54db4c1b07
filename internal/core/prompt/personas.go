package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

const (
	placeholderContext  = "{context}"
	placeholderQuestion = "{question}"
)

// Persona is a fixed system-instruction profile.
type Persona struct {
	Name         string `yaml:"name"`
	Instructions string `yaml:"instructions"`
}

// Set holds the personas and templates one deployment serves. Immutable
// after Validate passes at startup.
type Set struct {
	Default          Persona `yaml:"default"`
	Alternate        Persona `yaml:"alternate"`
	Greeting         string  `yaml:"greeting"`
	GroundedTemplate string  `yaml:"grounded_template"`
}

const defaultGroundedTemplate = `CONTEXT:
{context}

QUERY:
{question}

Use the provided context to answer the provided user query. Only use the provided context to answer the query. If you do not know the answer, respond with "I don't know".`

// DefaultSet returns the built-in virtual-student personas.
func DefaultSet() Set {
	return Set{
		Default: Persona{
			Name: "student",
			Instructions: "You are Sasha, a curious virtual student. The user is your teacher and is " +
				"explaining a concept to you. Listen carefully, restate what you understood in your own " +
				"words, and ask one short follow-up question that tests whether you really got it. " +
				"Never pretend to know more than the teacher has explained.",
		},
		Alternate: Persona{
			Name: "skeptic",
			Instructions: "You are Sasha in a skeptical mood. The user is teaching you a concept. " +
				"Politely challenge each explanation: point out the step you find least convincing and " +
				"ask for an example or counterexample before you accept it. Stay curious, not hostile.",
		},
		Greeting:         "Hi, I'm Sasha, your virtual student. Teach me something, or upload a PDF and quiz me on it.",
		GroundedTemplate: defaultGroundedTemplate,
	}
}

// Load reads a persona set from a YAML file, filling omitted fields from
// the built-in defaults. An empty path returns the defaults unchanged.
func Load(path string) (Set, error) {
	set := DefaultSet()
	if strings.TrimSpace(path) == "" {
		return set, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, domain.WrapError(domain.ErrConfig, "read personas file", err)
	}
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return Set{}, domain.WrapError(domain.ErrConfig, "parse personas file", err)
	}
	return set, nil
}

// Validate rejects blank instructions and grounded templates missing a
// mandatory placeholder. Failures are fatal at startup.
func (s Set) Validate() error {
	if strings.TrimSpace(s.Default.Instructions) == "" {
		return domain.WrapError(domain.ErrConfig, "validate personas", errors.New("default persona instructions are empty"))
	}
	if strings.TrimSpace(s.Alternate.Instructions) == "" {
		return domain.WrapError(domain.ErrConfig, "validate personas", errors.New("alternate persona instructions are empty"))
	}
	for _, placeholder := range []string{placeholderContext, placeholderQuestion} {
		if !strings.Contains(s.GroundedTemplate, placeholder) {
			return domain.WrapError(domain.ErrConfig, "validate personas",
				fmt.Errorf("grounded template is missing the %s placeholder", placeholder))
		}
	}
	return nil
}

// ForMode maps a session mode to the persona whose instructions drive it.
// Document-grounded turns keep the default persona as their base voice.
func (s Set) ForMode(mode domain.Mode) Persona {
	if mode == domain.ModeAlternatePersona {
		return s.Alternate
	}
	return s.Default
}
