package domain

import "time"

// Role distinguishes employers, who author contests, from candidates, who attempt them.
type Role string

const (
	RoleEmployer  Role = "EMPLOYER"
	RoleCandidate Role = "CANDIDATE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployer || r == RoleCandidate
}

// User is an account holder. PasswordHash is empty for anonymous users.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Role         Role      `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"passwordHash,omitempty"`
	Anonymous    bool      `json:"anonymous,omitempty" bson:"-"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// TrialType tags the variant carried by a Trial.
type TrialType string

const (
	TrialMCQ          TrialType = "MCQ"
	TrialTextResponse TrialType = "TEXT_RESPONSE"
	TrialCoding       TrialType = "CODING_EXERCISE"
	TrialDeliverable  TrialType = "DELIVERABLE"
)

// TrialTypes lists every variant in display order.
var TrialTypes = []TrialType{TrialMCQ, TrialTextResponse, TrialCoding, TrialDeliverable}

// Trial is one assessable unit of a Job. Type selects which fields are meaningful:
// MCQ uses QuestionText, Options and CorrectAnswerIndex; every other variant uses Prompt.
type Trial struct {
	ID                 string    `json:"id" bson:"id"`
	Type               TrialType `json:"type" bson:"type"`
	Points             int       `json:"points" bson:"points"`
	QuestionText       string    `json:"questionText,omitempty" bson:"questionText,omitempty"`
	Options            []string  `json:"options,omitempty" bson:"options,omitempty"`
	CorrectAnswerIndex int       `json:"correctAnswerIndex" bson:"correctAnswerIndex"`
	Prompt             string    `json:"prompt,omitempty" bson:"prompt,omitempty"`
}

// Job is an employer-defined contest.
type Job struct {
	ID                     string    `json:"id" bson:"_id"`
	EmployerID             string    `json:"employerId" bson:"employerId"`
	Title                  string    `json:"title" bson:"title"`
	CompanyName            string    `json:"companyName" bson:"companyName"`
	Description            string    `json:"description" bson:"description"`
	Trials                 []Trial   `json:"trials" bson:"trials"`
	StartDate              time.Time `json:"startDate" bson:"startDate"`
	EndDate                time.Time `json:"endDate" bson:"endDate"`
	ContestDurationMinutes int       `json:"contestDurationMinutes" bson:"contestDurationMinutes"`
	CreatedAt              time.Time `json:"createdAt" bson:"createdAt"`
}

// AnswerKind tags the value carried by an Answer.
type AnswerKind string

const (
	AnswerChoice AnswerKind = "CHOICE"
	AnswerText   AnswerKind = "TEXT"
	AnswerFile   AnswerKind = "FILE"
)

// FileRef is an uploaded deliverable. Payload is never interpreted.
type FileRef struct {
	FileName string `json:"fileName" bson:"fileName"`
	Payload  []byte `json:"payload" bson:"payload"`
}

// Answer holds a candidate's value for one trial.
type Answer struct {
	TrialID string     `json:"trialId" bson:"trialId"`
	Kind    AnswerKind `json:"kind" bson:"kind"`
	Choice  *int       `json:"choice,omitempty" bson:"choice,omitempty"`
	Text    string     `json:"text,omitempty" bson:"text,omitempty"`
	File    *FileRef   `json:"file,omitempty" bson:"file,omitempty"`
}

// Submission is the immutable record of a finalized attempt.
type Submission struct {
	ID              string    `json:"id" bson:"_id"`
	JobID           string    `json:"jobId" bson:"jobId"`
	CandidateID     string    `json:"candidateId" bson:"candidateId"`
	Answers         []Answer  `json:"answers" bson:"answers"`
	Score           int       `json:"score" bson:"score"`
	Total           int       `json:"total" bson:"total"`
	SubmissionTime  time.Time `json:"submissionTime" bson:"submissionTime"`
	DurationSeconds int64     `json:"durationSeconds" bson:"durationSeconds"`
}

// AnswerFor returns the answer recorded for trialID, if any.
func (s Submission) AnswerFor(trialID string) (Answer, bool) {
	for _, a := range s.Answers {
		if a.TrialID == trialID {
			return a, true
		}
	}
	return Answer{}, false
}

// LeaderboardEntry is one ranked submission.
type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	SubmissionID    string    `json:"submissionId"`
	CandidateID     string    `json:"candidateId"`
	CandidateEmail  string    `json:"candidateEmail,omitempty"`
	Score           int       `json:"score"`
	Total           int       `json:"total"`
	DurationSeconds int64     `json:"durationSeconds"`
	SubmissionTime  time.Time `json:"submissionTime"`
}

// Leaderboard captures the ordered ranking for one job.
type Leaderboard struct {
	JobID     string             `json:"jobId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// SuggestionRequest asks the suggestion collaborator for one trial of the given type.
type SuggestionRequest struct {
	JobTitle        string    `json:"jobTitle"`
	TrialType       TrialType `json:"trialType"`
	ExistingPrompts []string  `json:"existingPrompts"`
}

// Suggestion is a partially populated trial. CorrectAnswerIndex is nil when absent.
type Suggestion struct {
	QuestionText       string   `json:"questionText,omitempty"`
	Options            []string `json:"options,omitempty"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex,omitempty"`
	Prompt             string   `json:"prompt,omitempty"`
}
