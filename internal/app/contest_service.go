package app

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/domain"
	"hiring-contest-service/internal/metrics"
)

const (
	unknownCandidate = "Unknown Candidate"
	persistTimeout   = 10 * time.Second
)

// JobListing is a job as shown to a candidate. Availability and completion are
// independent: a completed job stays listed but cannot be re-entered.
type JobListing struct {
	Job       domain.Job `json:"job"`
	Available bool       `json:"available"`
	Completed bool       `json:"completed"`
}

// EmployerJob is a job as shown to its owner.
type EmployerJob struct {
	Job         domain.Job `json:"job"`
	Submissions int        `json:"submissions"`
}

// ReviewItem pairs a trial with the candidate's answer, nil when unanswered.
type ReviewItem struct {
	Trial  domain.Trial   `json:"trial"`
	Answer *domain.Answer `json:"answer,omitempty"`
}

// SubmissionReview is one submission laid out for human review.
type SubmissionReview struct {
	Submission     domain.Submission `json:"submission"`
	CandidateEmail string            `json:"candidateEmail"`
	Items          []ReviewItem      `json:"items"`
}

// JobResults is the employer's results view of one job.
type JobResults struct {
	Job         domain.Job         `json:"job"`
	Leaderboard domain.Leaderboard `json:"leaderboard"`
	Reviews     []SubmissionReview `json:"reviews"`
}

// ContestService contains the contest lifecycle use cases.
type ContestService struct {
	jobs        JobRepository
	submissions SubmissionRepository
	users       UserRepository
	attempts    AttemptRepository

	clock   Clock
	ids     *snowflake.Node
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Option customizes a ContestService.
type Option func(*ContestService)

func WithClock(c Clock) Option { return func(s *ContestService) { s.clock = c } }

func WithLogger(l logrus.FieldLogger) Option { return func(s *ContestService) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *ContestService) { s.metrics = m } }

// WithIDNode sets the snowflake node used for submission ids. Ids are time ordered,
// which makes them a stable final tiebreak on the leaderboard.
func WithIDNode(n *snowflake.Node) Option { return func(s *ContestService) { s.ids = n } }

func NewContestService(jobs JobRepository, submissions SubmissionRepository, users UserRepository, attempts AttemptRepository, opts ...Option) *ContestService {
	s := &ContestService{
		jobs:        jobs,
		submissions: submissions,
		users:       users,
		attempts:    attempts,
		clock:       SystemClock{},
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		// node 1 is always within range
		s.ids, _ = snowflake.NewNode(1)
	}
	return s
}

// CreateJob validates and stores a new job owned by employer.
func (s *ContestService) CreateJob(ctx context.Context, employer domain.User, job domain.Job) (domain.Job, error) {
	if employer.Role != domain.RoleEmployer || employer.ID == "" {
		return domain.Job{}, domain.ErrForbidden
	}

	job.ID = uuid.NewString()
	job.EmployerID = employer.ID
	job.CreatedAt = s.clock.Now()
	job.Trials = append([]domain.Trial(nil), job.Trials...)
	for i := range job.Trials {
		if job.Trials[i].ID == "" {
			job.Trials[i].ID = uuid.NewString()
		}
	}
	if err := job.Validate(); err != nil {
		return domain.Job{}, err
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return domain.Job{}, err
	}
	s.log.WithFields(logrus.Fields{"job_id": job.ID, "employer_id": employer.ID, "trials": len(job.Trials)}).Info("job created")
	return job, nil
}

// CreateJobFromDraft builds the draft into a job for the given window and stores it.
func (s *ContestService) CreateJobFromDraft(ctx context.Context, employer domain.User, draft *domain.JobDraft, start, end time.Time, durationMinutes int) (domain.Job, error) {
	if employer.Role != domain.RoleEmployer || employer.ID == "" {
		return domain.Job{}, domain.ErrForbidden
	}
	job, err := draft.Build(start, end, durationMinutes)
	if err != nil {
		return domain.Job{}, err
	}
	return s.CreateJob(ctx, employer, job)
}

// ListCandidateJobs returns the jobs available right now, each marked completed when the
// candidate already submitted.
func (s *ContestService) ListCandidateJobs(ctx context.Context, candidateID string) ([]JobListing, error) {
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	completed := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		completed[sub.JobID] = struct{}{}
	}

	now := s.clock.Now()
	listings := make([]JobListing, 0, len(jobs))
	for _, job := range jobs {
		if !job.AvailableAt(now) {
			continue
		}
		_, done := completed[job.ID]
		listings = append(listings, JobListing{Job: job, Available: true, Completed: done})
	}
	return listings, nil
}

// ListEmployerJobs returns the employer's jobs with their submission counts.
func (s *ContestService) ListEmployerJobs(ctx context.Context, employerID string) ([]EmployerJob, error) {
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EmployerJob, 0)
	for _, job := range jobs {
		if job.EmployerID != employerID {
			continue
		}
		count, err := s.submissions.CountByJob(ctx, job.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, EmployerJob{Job: job, Submissions: count})
	}
	return out, nil
}

// StartAttempt begins, or resumes, the candidate's attempt on a job.
func (s *ContestService) StartAttempt(ctx context.Context, candidateID, jobID string) (AttemptStatus, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return AttemptStatus{}, err
	}
	if live, ok := s.attempts.Get(jobID, candidateID); ok {
		return live.Status(), nil
	}
	if !job.AvailableAt(s.clock.Now()) {
		return AttemptStatus{}, domain.ErrJobNotAvailable
	}
	submitted, err := s.submissions.HasSubmitted(ctx, jobID, candidateID)
	if err != nil {
		return AttemptStatus{}, err
	}
	if submitted {
		return AttemptStatus{}, domain.ErrAlreadySubmitted
	}

	attempt, created, err := s.attempts.GetOrCreate(ctx, jobID, candidateID, func() *Attempt {
		return StartAttempt(job, candidateID, s.clock, s.nextSubmissionID, s.persist)
	})
	if err != nil {
		return AttemptStatus{}, err
	}
	if created {
		s.metrics.AttemptStarted()
		s.log.WithFields(logrus.Fields{
			"job_id":       jobID,
			"candidate_id": candidateID,
			"timed":        job.Timed(),
		}).Info("attempt started")
	}
	return attempt.Status(), nil
}

// Attempt returns the live attempt for the pair.
func (s *ContestService) Attempt(candidateID, jobID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(jobID, candidateID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// AttemptStatus reports the live attempt's countdown and progress.
func (s *ContestService) AttemptStatus(_ context.Context, candidateID, jobID string) (AttemptStatus, error) {
	attempt, err := s.Attempt(candidateID, jobID)
	if err != nil {
		return AttemptStatus{}, err
	}
	return attempt.Status(), nil
}

// RecordAnswer validates answer against its trial and stores it on the live attempt.
// A deliverable without a file is not an answer and clears any earlier one.
func (s *ContestService) RecordAnswer(_ context.Context, candidateID, jobID string, answer domain.Answer) (AttemptStatus, error) {
	attempt, err := s.Attempt(candidateID, jobID)
	if err != nil {
		return AttemptStatus{}, err
	}
	trial, ok := attempt.Job().Trial(answer.TrialID)
	if !ok {
		return AttemptStatus{}, domain.ErrTrialNotFound
	}
	if trial.Type == domain.TrialDeliverable && answer.Empty() {
		if err := attempt.ClearAnswer(trial.ID); err != nil {
			return AttemptStatus{}, err
		}
		return attempt.Status(), nil
	}
	if err := trial.CheckAnswer(answer); err != nil {
		return AttemptStatus{}, err
	}
	if err := attempt.RecordAnswer(answer); err != nil {
		return AttemptStatus{}, err
	}
	return attempt.Status(), nil
}

// SubmitAttempt finalizes the live attempt. If the countdown already finalized it, the
// recorded submission is returned.
func (s *ContestService) SubmitAttempt(ctx context.Context, candidateID, jobID string) (domain.Submission, error) {
	attempt, err := s.Attempt(candidateID, jobID)
	if err == nil {
		return attempt.Finalize()
	}
	if !errors.Is(err, domain.ErrAttemptNotFound) {
		return domain.Submission{}, err
	}
	// the countdown may have finalized and released the attempt already
	subs, lerr := s.submissions.ListByCandidate(ctx, candidateID)
	if lerr != nil {
		return domain.Submission{}, lerr
	}
	for _, sub := range subs {
		if sub.JobID == jobID {
			return sub, nil
		}
	}
	return domain.Submission{}, err
}

// AbandonAttempt discards the live attempt without a submission. A finalized attempt
// waiting for its submission to be stored cannot be abandoned.
func (s *ContestService) AbandonAttempt(_ context.Context, candidateID, jobID string) error {
	attempt, err := s.Attempt(candidateID, jobID)
	if err != nil {
		return err
	}
	if err := attempt.Abandon(); err != nil {
		return err
	}
	s.attempts.Delete(jobID, candidateID)
	s.log.WithFields(logrus.Fields{"job_id": jobID, "candidate_id": candidateID}).Info("attempt abandoned")
	return nil
}

// Leaderboard ranks all submissions for a job. Only the owning employer may read it.
func (s *ContestService) Leaderboard(ctx context.Context, employerID, jobID string) (domain.Leaderboard, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	if job.EmployerID != employerID {
		return domain.Leaderboard{}, domain.ErrForbidden
	}
	return s.leaderboard(ctx, jobID)
}

func (s *ContestService) leaderboard(ctx context.Context, jobID string) (domain.Leaderboard, error) {
	subs, err := s.submissions.ListByJob(ctx, jobID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	entries := RankSubmissions(subs)
	emails := s.candidateEmails(ctx, subs)
	for i := range entries {
		entries[i].CandidateEmail = emails[entries[i].CandidateID]
	}
	return domain.Leaderboard{JobID: jobID, Entries: entries, UpdatedAt: s.clock.Now()}, nil
}

// JobResults returns the leaderboard and per-trial review of every submission. Only the
// owning employer may read it.
func (s *ContestService) JobResults(ctx context.Context, employerID, jobID string) (JobResults, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return JobResults{}, err
	}
	if job.EmployerID != employerID {
		return JobResults{}, domain.ErrForbidden
	}
	lb, err := s.leaderboard(ctx, jobID)
	if err != nil {
		return JobResults{}, err
	}
	subs, err := s.submissions.ListByJob(ctx, jobID)
	if err != nil {
		return JobResults{}, err
	}
	emails := s.candidateEmails(ctx, subs)

	reviews := make([]SubmissionReview, 0, len(subs))
	for _, sub := range subs {
		items := make([]ReviewItem, 0, len(job.Trials))
		for _, trial := range job.Trials {
			item := ReviewItem{Trial: trial}
			if ans, ok := sub.AnswerFor(trial.ID); ok {
				item.Answer = &ans
			}
			items = append(items, item)
		}
		reviews = append(reviews, SubmissionReview{
			Submission:     sub,
			CandidateEmail: emails[sub.CandidateID],
			Items:          items,
		})
	}
	return JobResults{Job: job, Leaderboard: lb, Reviews: reviews}, nil
}

func (s *ContestService) candidateEmails(ctx context.Context, subs []domain.Submission) map[string]string {
	emails := make(map[string]string, len(subs))
	for _, sub := range subs {
		if _, ok := emails[sub.CandidateID]; ok {
			continue
		}
		emails[sub.CandidateID] = unknownCandidate
		if s.users == nil {
			continue
		}
		if user, err := s.users.GetUser(ctx, sub.CandidateID); err == nil {
			emails[sub.CandidateID] = user.Email
		}
	}
	return emails
}

func (s *ContestService) nextSubmissionID() string {
	return s.ids.Generate().String()
}

// persist stores the submission of a finalized attempt. The attempt is released once the
// outcome is final; after a store failure it stays live so a later submit retries the
// same submission.
func (s *ContestService) persist(sub domain.Submission, trigger FinalizeTrigger) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	fields := logrus.Fields{
		"job_id":        sub.JobID,
		"candidate_id":  sub.CandidateID,
		"submission_id": sub.ID,
		"trigger":       trigger,
	}
	if err := s.submissions.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			s.attempts.Delete(sub.JobID, sub.CandidateID)
			s.log.WithFields(fields).Warn("submission already recorded")
			return err
		}
		s.log.WithFields(fields).WithError(err).Error("submission not recorded, attempt kept for retry")
		return errors.Wrap(err, "record submission")
	}
	s.attempts.Delete(sub.JobID, sub.CandidateID)
	s.metrics.SubmissionRecorded(string(trigger), sub.Score, sub.Total)
	s.log.WithFields(fields).WithField("score", sub.Score).WithField("total", sub.Total).Info("submission recorded")
	return nil
}
