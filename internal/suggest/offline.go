package suggest

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"hiring-contest-service/internal/domain"
)

// Offline returns canned suggestions after a short delay. It stands in for the model when
// no API key is configured.
type Offline struct {
	Delay time.Duration
}

func (o Offline) Suggest(ctx context.Context, req domain.SuggestionRequest) (domain.Suggestion, error) {
	if o.Delay > 0 {
		timer := time.NewTimer(o.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Suggestion{}, ctx.Err()
		case <-timer.C:
		}
	}

	switch req.TrialType {
	case domain.TrialMCQ:
		correct := 3
		return domain.Suggestion{
			QuestionText:       fmt.Sprintf("What is a key skill for a %s?", req.JobTitle),
			Options:            []string{"Communication", "Problem Solving", "Teamwork", "All of the above"},
			CorrectAnswerIndex: &correct,
		}, nil
	case domain.TrialTextResponse:
		return domain.Suggestion{
			Prompt: fmt.Sprintf("Describe a challenging situation you faced as a %s and how you resolved it.", req.JobTitle),
		}, nil
	case domain.TrialCoding:
		return domain.Suggestion{Prompt: "Write a function in any language to reverse a string."}, nil
	case domain.TrialDeliverable:
		return domain.Suggestion{
			Prompt: fmt.Sprintf("Create a one-page PDF document outlining a 30-60-90 day plan for a new %s.", req.JobTitle),
		}, nil
	}
	return domain.Suggestion{}, errors.Wrapf(domain.ErrInvalidTrial, "unknown trial type %q", req.TrialType)
}
