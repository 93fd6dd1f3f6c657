package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"hiring-contest-service/internal/domain"
)

// Prompt renders the instruction sent to the model for req. The model is asked for a bare
// JSON object so the reply can be decoded into a suggestion directly.
func Prompt(req domain.SuggestionRequest) string {
	var b strings.Builder
	switch req.TrialType {
	case domain.TrialMCQ:
		fmt.Fprintf(&b, "Based on the job title %q, generate a single, relevant multiple-choice question to assess a candidate's basic knowledge. ", req.JobTitle)
		b.WriteString("Avoid questions that are too generic or too specific to a single company's technology stack unless the title is very specific. ")
		b.WriteString("Provide 4 distinct options and designate the correct answer. ")
		b.WriteString(`Reply with JSON only: {"questionText": string, "options": [4 strings], "correctAnswerIndex": 0-based integer}.`)
	case domain.TrialTextResponse:
		fmt.Fprintf(&b, "Based on the job title %q, generate a single, insightful, open-ended question or prompt for a text response. ", req.JobTitle)
		b.WriteString("It should assess the candidate's experience, problem-solving skills or understanding of the role. ")
		b.WriteString(`Reply with JSON only: {"prompt": string}.`)
	case domain.TrialCoding:
		fmt.Fprintf(&b, "Based on the job title %q, generate a prompt for a short, practical coding exercise. ", req.JobTitle)
		b.WriteString("It should be solvable in a text editor and assess a fundamental skill for the role. ")
		b.WriteString(`Reply with JSON only: {"prompt": string}.`)
	case domain.TrialDeliverable:
		fmt.Fprintf(&b, "Based on the job title %q, generate a prompt for a task where the candidate creates and uploads a deliverable such as a document, a design or a plan. ", req.JobTitle)
		b.WriteString("The candidate should be able to complete it reasonably and demonstrate their skills. ")
		b.WriteString(`Reply with JSON only: {"prompt": string}.`)
	}
	if len(req.ExistingPrompts) > 0 {
		fmt.Fprintf(&b, "\nDo not repeat these topics: %s.", strings.Join(req.ExistingPrompts, ", "))
	}
	return b.String()
}

// Decode parses a model reply. Markdown code fences around the JSON are tolerated.
func Decode(reply string) (domain.Suggestion, error) {
	body := strings.TrimSpace(reply)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	var s domain.Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &s); err != nil {
		return domain.Suggestion{}, errors.Wrap(domain.ErrInvalidSuggestion, err.Error())
	}
	return s, nil
}
