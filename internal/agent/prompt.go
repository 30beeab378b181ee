package agent

import (
	"fmt"
	"strings"

	"codeberg.org/askdocs/server/internal/text"
)

const (
	ContextPlaceholder  = "{context}"
	QuestionPlaceholder = "{question}"

	DefaultPromptBudget = 8192

	// returned without calling the model when nothing relevant was retrieved
	FallbackAnswer = "Sorry, I dont know how to help with that."
)

const DefaultPromptTemplate = `You are an enthusiastic documentation assistant who is passionate about helping people! Answer using only the provided documentation sections. If the answer is not explicitly available in the documentation or you are unsure, respond with "` + FallbackAnswer + `" Keep SQL and code snippets unmodified.

Documentation sections:
` + ContextPlaceholder + `

Question:
` + QuestionPlaceholder + `

Answer in markdown (including related code snippets if available):
`

// fills the template with the retrieved sections and the question. the
// context is joined with single spaces, stripped of inline links, has runs
// of spaces collapsed and is hard-cut so it never takes more than
// budget - len(template) bytes.
func ComposePrompt(template, query string, sections []string, budget int) string {
	context := text.ReplaceMultipleSpaces(text.RemoveMarkdownLinks(strings.Join(sections, " ")))

	available := max(budget-len(template), 0)
	context = text.Truncate(context, available)

	// single pass over the template, placeholders inside the context stay literal
	return strings.NewReplacer(
		ContextPlaceholder, context,
		QuestionPlaceholder, query,
	).Replace(template)
}

// checks that a template carries both placeholders
func ValidateTemplate(template string) error {
	for _, p := range []string{ContextPlaceholder, QuestionPlaceholder} {
		if !strings.Contains(template, p) {
			return fmt.Errorf("prompt template is missing the %s placeholder", p)
		}
	}

	return nil
}
