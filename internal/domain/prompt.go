package domain

import (
	"fmt"
	"strings"
)

// systemPrompt fixes the assistant's role for every generation call.
const systemPrompt = "You are a vocabulary tutor for language learners. " +
	"You suggest useful words with accurate translations and short example sentences. " +
	"You always answer with a single JSON object and nothing else."

// maxPromptExclusions bounds how many existing terms are embedded in the
// prompt; beyond that the post-extraction filter alone handles duplicates.
const maxPromptExclusions = 100

// buildPrompt composes the user message for a generation command.
func buildPrompt(cmd GenerateWordsCommand) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Suggest %d %s words at CEFR level %s for a learner whose native language is %s.\n",
		cmd.Count, cmd.LearningLanguage, cmd.Difficulty.CEFRLevel(), cmd.UserLanguage)

	if topic := strings.TrimSpace(cmd.CategoryContext); topic != "" {
		fmt.Fprintf(&b, "The words must relate to the topic: %s.\n", topic)
	}

	if len(cmd.ExcludeTerms) > 0 {
		excluded := cmd.ExcludeTerms
		if len(excluded) > maxPromptExclusions {
			excluded = excluded[:maxPromptExclusions]
		}
		fmt.Fprintf(&b, "Do not suggest any of these words the learner already knows: %s.\n",
			strings.Join(excluded, ", "))
	}

	fmt.Fprintf(&b, "For each word provide the term in %s, its translation in %s, "+
		"and one or two short example sentences in Markdown.\n",
		cmd.LearningLanguage, cmd.UserLanguage)

	b.WriteString(`Return only a JSON object of the shape {"words": [{"term": "...", "translation": "...", "examplesMd": "..."}]}.`)

	return b.String()
}
