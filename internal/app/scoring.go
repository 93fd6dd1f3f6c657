package app

import "hiring-contest-service/internal/domain"

// Score grades answers against the job's trials. Only MCQ trials count: total is the sum
// of their points whether answered or not, and score adds the points of each MCQ whose
// answer equals the correct index. Missing or mismatched answers contribute zero.
// Duplicate answers for one trial resolve to the last one.
func Score(trials []domain.Trial, answers []domain.Answer) (score, total int) {
	byTrial := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		byTrial[a.TrialID] = a
	}

	for _, trial := range trials {
		switch trial.Type {
		case domain.TrialMCQ:
			total += trial.Points
			a, ok := byTrial[trial.ID]
			if ok && a.Kind == domain.AnswerChoice && a.Choice != nil && *a.Choice == trial.CorrectAnswerIndex {
				score += trial.Points
			}
		case domain.TrialTextResponse, domain.TrialCoding, domain.TrialDeliverable:
			// recorded for human review only
		}
	}
	return score, total
}
