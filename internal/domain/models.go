// Package domain holds the vocabulary-generation model and the service that
// turns a generation command into a validated batch of word suggestions.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty selects the target proficiency tier for generated words.
type Difficulty string

// Supported difficulty tiers.
const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyAdvanced Difficulty = "advanced"
)

// CEFRLevel maps a difficulty tier to the CEFR band embedded in the prompt.
func (d Difficulty) CEFRLevel() string {
	switch d {
	case DifficultyEasy:
		return "A1-A2 (beginner)"
	case DifficultyMedium:
		return "B1-B2 (intermediate)"
	case DifficultyAdvanced:
		return "C1-C2 (advanced)"
	default:
		return ""
	}
}

const (
	maxSuggestionCount = 50

	maxTermLength     = 500
	maxExamplesLength = 2000
)

// GenerateWordsCommand describes one AI word-suggestion request. Language
// names, the category context and the exclusion list come from the word
// persistence collaborator; this service treats them as plain inputs.
type GenerateWordsCommand struct {
	LearningLanguage string     `json:"learningLanguage"`
	UserLanguage     string     `json:"userLanguage"`
	Difficulty       Difficulty `json:"difficulty"`
	Count            int        `json:"count"`
	CategoryContext  string     `json:"categoryContext,omitempty"`
	ExcludeTerms     []string   `json:"excludeTerms,omitempty"`
}

// Validate checks the command before any upstream call is made.
func (c GenerateWordsCommand) Validate() error {
	if strings.TrimSpace(c.LearningLanguage) == "" {
		return errors.New("learning language is required")
	}

	if strings.TrimSpace(c.UserLanguage) == "" {
		return errors.New("user language is required")
	}

	if c.Difficulty.CEFRLevel() == "" {
		return fmt.Errorf("unknown difficulty: %q", c.Difficulty)
	}

	if c.Count < 1 {
		return errors.New("count must be at least 1")
	}

	if c.Count > maxSuggestionCount {
		return fmt.Errorf("count cannot exceed %d", maxSuggestionCount)
	}

	return nil
}

// WordSuggestion is one sanitized, length-capped vocabulary suggestion.
// Suggestions are produced per call and not persisted by this service.
type WordSuggestion struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
	ExamplesMd  string `json:"examplesMd,omitempty"`
}
