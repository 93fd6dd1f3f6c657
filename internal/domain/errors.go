package domain

import "github.com/pkg/errors"

var (
	// ErrJobNotFound is returned when a job id does not resolve.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotAvailable is returned when an attempt is started outside the job window.
	ErrJobNotAvailable = errors.New("job is not available")
	// ErrAlreadySubmitted indicates the candidate already has a submission for the job.
	ErrAlreadySubmitted = errors.New("submission already recorded for this job")
	// ErrAttemptNotFound is returned when no live attempt exists for a candidate and job.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptFinalized is returned when an answer arrives after finalization.
	ErrAttemptFinalized = errors.New("attempt already finalized")
	// ErrAttemptInProgress indicates another process holds the attempt.
	ErrAttemptInProgress = errors.New("attempt already in progress elsewhere")
	// ErrTrialNotFound indicates an answer references an unknown trial.
	ErrTrialNotFound = errors.New("trial not found")
	// ErrInvalidAnswer indicates an answer of the wrong kind for its trial.
	ErrInvalidAnswer = errors.New("invalid answer")

	ErrTooManyTrials = errors.New("a job holds at most 10 trials")
	ErrInvalidTrial  = errors.New("invalid trial")
	ErrInvalidJob    = errors.New("invalid job")
	ErrInvalidWindow = errors.New("end date must be after the start date")

	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("password required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")

	// ErrInvalidSuggestion is returned when the collaborator answered with an unusable shape.
	ErrInvalidSuggestion = errors.New("invalid suggestion")
	// ErrSuggestionUnavailable is returned when no suggestion could be produced.
	ErrSuggestionUnavailable = errors.New("could not generate a suggestion")
)
