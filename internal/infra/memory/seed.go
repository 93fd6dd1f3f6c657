package memory

import (
	"time"

	"hiring-contest-service/internal/domain"
)

// SeedEmployerID owns the demo jobs served by the memory driver.
const SeedEmployerID = "employer-demo"

// SeedJobs returns demo jobs whose windows are open around now: one timed, one untimed.
func SeedJobs(now time.Time) []domain.Job {
	start := now.Add(-24 * time.Hour)
	end := now.Add(7 * 24 * time.Hour)
	return []domain.Job{
		{
			ID:                     "job-backend-go",
			EmployerID:             SeedEmployerID,
			Title:                  "Backend Engineer (Go)",
			CompanyName:            "Acme Hiring",
			Description:            "Services, storage and concurrency.",
			StartDate:              start,
			EndDate:                end,
			ContestDurationMinutes: 15,
			CreatedAt:              start,
			Trials: []domain.Trial{
				{
					ID:                 "go-mcq-1",
					Type:               domain.TrialMCQ,
					Points:             10,
					QuestionText:       "Which keyword starts a goroutine?",
					Options:            []string{"async", "go", "spawn", "thread"},
					CorrectAnswerIndex: 1,
				},
				{
					ID:                 "go-mcq-2",
					Type:               domain.TrialMCQ,
					Points:             10,
					QuestionText:       "What does a nil map return on lookup?",
					Options:            []string{"panic", "an error", "the zero value", "nil always"},
					CorrectAnswerIndex: 2,
				},
				{
					ID:     "go-code-1",
					Type:   domain.TrialCoding,
					Points: 20,
					Prompt: "Write a function that merges two sorted integer slices.",
				},
			},
		},
		{
			ID:          "job-product-designer",
			EmployerID:  SeedEmployerID,
			Title:       "Product Designer",
			CompanyName: "Acme Hiring",
			Description: "Take-home portfolio review.",
			StartDate:   start,
			EndDate:     end,
			CreatedAt:   start.Add(time.Minute),
			Trials: []domain.Trial{
				{
					ID:     "design-text-1",
					Type:   domain.TrialTextResponse,
					Points: 10,
					Prompt: "Describe a design decision you reversed after user research.",
				},
				{
					ID:     "design-file-1",
					Type:   domain.TrialDeliverable,
					Points: 10,
					Prompt: "Upload a case study of a recent project.",
				},
			},
		},
	}
}
