package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/scry-quest/internal/domain"
)

const promptText = `You are grading a flashcard answer.

Question: {{.Question}}
Reference answer: {{.ReferenceAnswer}}
Student answer: {{.UserAnswer}}

Respond with a JSON object with these fields:
- "correct_parts": exact substrings of the student answer that are correct
- "incorrect_parts": exact substrings of the student answer that are wrong
- "missing_points": exact substrings of the reference answer the student left out
- "explanation": one or two sentences addressed to the student

Every substring must be copied verbatim, including case and punctuation.`

var promptTemplate = template.Must(template.New("grading").Parse(promptText))

// BuildPrompt renders the grading prompt for req.
func BuildPrompt(req Request) (string, error) {
	if strings.TrimSpace(req.UserAnswer) == "" {
		return "", ErrEmptyAnswer
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// ParseFeedback decodes the model's JSON reply. A Markdown code fence around
// the object is tolerated.
func ParseFeedback(raw string) (*domain.Feedback, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var fb domain.Feedback
	if err := json.Unmarshal([]byte(text), &fb); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return &fb, nil
}
