package http

import (
	"time"

	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/domain"
)

// candidateTrial is a trial as a candidate sees it: the correct answer index is withheld.
type candidateTrial struct {
	ID           string           `json:"id"`
	Type         domain.TrialType `json:"type"`
	Points       int              `json:"points"`
	QuestionText string           `json:"questionText,omitempty"`
	Options      []string         `json:"options,omitempty"`
	Prompt       string           `json:"prompt,omitempty"`
}

type candidateJob struct {
	ID                     string           `json:"id"`
	Title                  string           `json:"title"`
	CompanyName            string           `json:"companyName"`
	Description            string           `json:"description"`
	Trials                 []candidateTrial `json:"trials"`
	StartDate              time.Time        `json:"startDate"`
	EndDate                time.Time        `json:"endDate"`
	ContestDurationMinutes int              `json:"contestDurationMinutes"`
}

func toCandidateJob(job domain.Job) candidateJob {
	trials := make([]candidateTrial, 0, len(job.Trials))
	for _, t := range job.Trials {
		trials = append(trials, candidateTrial{
			ID:           t.ID,
			Type:         t.Type,
			Points:       t.Points,
			QuestionText: t.QuestionText,
			Options:      t.Options,
			Prompt:       t.Prompt,
		})
	}
	return candidateJob{
		ID:                     job.ID,
		Title:                  job.Title,
		CompanyName:            job.CompanyName,
		Description:            job.Description,
		Trials:                 trials,
		StartDate:              job.StartDate,
		EndDate:                job.EndDate,
		ContestDurationMinutes: job.ContestDurationMinutes,
	}
}

type candidateListing struct {
	Job       candidateJob `json:"job"`
	Available bool         `json:"available"`
	Completed bool         `json:"completed"`
}

type credentialsRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
}

type anonymousRequest struct {
	Role domain.Role `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type attemptResponse struct {
	Job    candidateJob      `json:"job"`
	Status app.AttemptStatus `json:"status"`
}

// jobRequest is the employer's draft as submitted for creation.
type jobRequest struct {
	Title                  string         `json:"title"`
	CompanyName            string         `json:"companyName"`
	Description            string         `json:"description"`
	Trials                 []domain.Trial `json:"trials"`
	StartDate              time.Time      `json:"startDate"`
	EndDate                time.Time      `json:"endDate"`
	ContestDurationMinutes int            `json:"contestDurationMinutes"`
}

type suggestionRequest struct {
	Title       string           `json:"title"`
	CompanyName string           `json:"companyName,omitempty"`
	Description string           `json:"description,omitempty"`
	Trials      []domain.Trial   `json:"trials"`
	TrialID     string           `json:"trialId,omitempty"`
	TrialType   domain.TrialType `json:"trialType,omitempty"`
}

type suggestionResponse struct {
	TrialID string         `json:"trialId"`
	Trials  []domain.Trial `json:"trials"`
}
