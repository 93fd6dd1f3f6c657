package app_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/domain"
	"hiring-contest-service/internal/infra/memory"
	"hiring-contest-service/internal/logging"
)

var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	service     *app.ContestService
	clock       *app.ManualClock
	users       *memory.UserStore
	submissions *memory.SubmissionStore
	attempts    *memory.AttemptStore
	employer    domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := app.NewManualClock(testStart)
	jobs := memory.NewJobStore()
	f := &fixture{
		clock:       clock,
		users:       memory.NewUserStore(),
		submissions: memory.NewSubmissionStore(),
		attempts:    memory.NewAttemptStore(),
		employer:    domain.User{ID: "employer-1", Email: "boss@example.com", Role: domain.RoleEmployer},
	}
	require.NoError(t, f.users.CreateUser(context.Background(), f.employer))
	f.service = app.NewContestService(
		memory.NewJobCache(jobs, jobs, time.Minute),
		f.submissions,
		f.users,
		f.attempts,
		app.WithClock(clock),
		app.WithLogger(logging.Discard()),
	)
	return f
}

func (f *fixture) createJob(t *testing.T, minutes int) domain.Job {
	t.Helper()
	job, err := f.service.CreateJob(context.Background(), f.employer, domain.Job{
		Title:       "Backend Engineer",
		CompanyName: "Acme",
		Trials: []domain.Trial{
			{ID: "q1", Type: domain.TrialMCQ, Points: 10, QuestionText: "2 + 2?", Options: []string{"3", "4", "5", "22"}, CorrectAnswerIndex: 1},
			{ID: "q2", Type: domain.TrialMCQ, Points: 10, QuestionText: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswerIndex: 0},
			{ID: "essay", Type: domain.TrialTextResponse, Points: 10, Prompt: "Tell us about yourself."},
			{ID: "upload", Type: domain.TrialDeliverable, Points: 10, Prompt: "Upload your CV."},
		},
		StartDate:              testStart.Add(-time.Hour),
		EndDate:                testStart.Add(24 * time.Hour),
		ContestDurationMinutes: minutes,
	})
	require.NoError(t, err)
	return job
}

func (f *fixture) candidate(t *testing.T, id, email string) {
	t.Helper()
	require.NoError(t, f.users.CreateUser(context.Background(), domain.User{ID: id, Email: email, Role: domain.RoleCandidate}))
}

func TestCreateJobRequiresEmployer(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.CreateJob(context.Background(), domain.User{ID: "c1", Role: domain.RoleCandidate}, domain.Job{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateJobAssignsIDsAndValidates(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, 0)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, f.employer.ID, job.EmployerID)
	assert.Equal(t, testStart, job.CreatedAt)

	_, err := f.service.CreateJob(context.Background(), f.employer, domain.Job{
		Title:     "Bad window",
		StartDate: testStart,
		EndDate:   testStart,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestSubmitScoresMCQOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)
	f.candidate(t, "c1", "alice@example.com")

	status, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, app.AttemptInProgress, status.State)
	assert.Equal(t, int64(-1), status.RemainingSeconds)

	_, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.ChoiceAnswer("q1", 1))
	require.NoError(t, err)
	_, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.ChoiceAnswer("q2", 1))
	require.NoError(t, err)
	_, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.TextAnswer("essay", "I like Go"))
	require.NoError(t, err)

	f.clock.Advance(95 * time.Second)
	sub, err := f.service.SubmitAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, sub.Score)
	assert.Equal(t, 20, sub.Total)
	assert.Equal(t, int64(95), sub.DurationSeconds)
	assert.Len(t, sub.Answers, 3)

	ok, err := f.submissions.HasSubmitted(ctx, job.ID, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.attempts.Len())
}

func TestRecordAnswerRejectsWrongKind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)
	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)

	_, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.TextAnswer("q1", "four"))
	assert.ErrorIs(t, err, domain.ErrInvalidAnswer)
	_, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.ChoiceAnswer("q1", 7))
	assert.ErrorIs(t, err, domain.ErrInvalidAnswer)
	_, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.TextAnswer("missing", "x"))
	assert.ErrorIs(t, err, domain.ErrTrialNotFound)
	_, err = f.service.RecordAnswer(ctx, "c2", job.ID, domain.ChoiceAnswer("q1", 1))
	assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
}

func TestEmptyDeliverableClearsAnswer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)
	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)

	status, err := f.service.RecordAnswer(ctx, "c1", job.ID, domain.FileAnswer("upload", "cv.pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, 1, status.Answered)

	status, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.Answer{TrialID: "upload", Kind: domain.AnswerFile})
	require.NoError(t, err)
	assert.Equal(t, 0, status.Answered)
}

func TestStartAttemptResumesLiveAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)

	first, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Second)
	second, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, first.StartedAt, second.StartedAt)
	assert.Equal(t, int64(10), second.ElapsedSeconds)
}

func TestStartAttemptRejectsSecondSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)

	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	_, err = f.service.SubmitAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)

	_, err = f.service.StartAttempt(ctx, "c1", job.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
}

func TestStartAttemptOutsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)

	f.clock.Advance(48 * time.Hour)
	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	assert.ErrorIs(t, err, domain.ErrJobNotAvailable)

	_, err = f.service.StartAttempt(ctx, "c1", "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestCountdownAutoSubmits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 1)

	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	_, err = f.service.RecordAnswer(ctx, "c1", job.ID, domain.ChoiceAnswer("q1", 1))
	require.NoError(t, err)
	attempt, err := f.service.Attempt("c1", job.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	select {
	case <-attempt.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("attempt was not finalized on expiry")
	}

	subs, err := f.submissions.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, int64(60), subs[0].DurationSeconds)
	assert.Equal(t, 10, subs[0].Score)

	// a late manual submit gets the recorded submission back
	sub, err := f.service.SubmitAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, subs[0].ID, sub.ID)
}

func TestConcurrentSubmitsRecordOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 5)
	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	attempt, err := f.service.Attempt("c1", job.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	ids := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := attempt.Finalize()
			if err == nil {
				ids <- sub.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]struct{}{}
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1)
	count, err := f.submissions.CountByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAbandonAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)
	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.AbandonAttempt(ctx, "c1", job.ID))
	_, err = f.service.AttemptStatus(ctx, "c1", job.ID)
	assert.ErrorIs(t, err, domain.ErrAttemptNotFound)

	count, _ := f.submissions.CountByJob(ctx, job.ID)
	assert.Zero(t, count)

	// an abandoned attempt can be started again
	_, err = f.service.StartAttempt(ctx, "c1", job.ID)
	assert.NoError(t, err)
}

func TestListCandidateJobsMarksCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open := f.createJob(t, 0)
	done := f.createJob(t, 0)

	_, err := f.service.StartAttempt(ctx, "c1", done.ID)
	require.NoError(t, err)
	_, err = f.service.SubmitAttempt(ctx, "c1", done.ID)
	require.NoError(t, err)

	listings, err := f.service.ListCandidateJobs(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	status := map[string]bool{}
	for _, l := range listings {
		assert.True(t, l.Available)
		status[l.Job.ID] = l.Completed
	}
	assert.False(t, status[open.ID])
	assert.True(t, status[done.ID])

	f.clock.Advance(48 * time.Hour)
	listings, err = f.service.ListCandidateJobs(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestLeaderboardAndResults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)
	f.candidate(t, "c1", "alice@example.com")

	run := func(candidate string, choice int, after time.Duration) {
		_, err := f.service.StartAttempt(ctx, candidate, job.ID)
		require.NoError(t, err)
		_, err = f.service.RecordAnswer(ctx, candidate, job.ID, domain.ChoiceAnswer("q1", choice))
		require.NoError(t, err)
		f.clock.Advance(after)
		_, err = f.service.SubmitAttempt(ctx, candidate, job.ID)
		require.NoError(t, err)
	}
	run("c1", 1, 40*time.Second)
	run("anonymous-candidate-x", 1, 30*time.Second)
	run("c3", 0, 10*time.Second)

	lb, err := f.service.Leaderboard(ctx, f.employer.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, lb.Entries, 3)
	assert.Equal(t, "anonymous-candidate-x", lb.Entries[0].CandidateID)
	assert.Equal(t, "Unknown Candidate", lb.Entries[0].CandidateEmail)
	assert.Equal(t, "alice@example.com", lb.Entries[1].CandidateEmail)
	assert.Equal(t, "c3", lb.Entries[2].CandidateID)
	for i, e := range lb.Entries {
		assert.Equal(t, i+1, e.Rank)
	}

	_, err = f.service.JobResults(ctx, "someone-else", job.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	results, err := f.service.JobResults(ctx, f.employer.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, results.Reviews, 3)
	review := results.Reviews[0]
	require.Len(t, review.Items, len(job.Trials))
	assert.NotNil(t, review.Items[0].Answer)
	assert.Nil(t, review.Items[2].Answer)

	jobs, err := f.service.ListEmployerJobs(ctx, f.employer.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 3, jobs[0].Submissions)
}

type flakySubmissions struct {
	*memory.SubmissionStore
	failures atomic.Int32
}

func (s *flakySubmissions) CreateSubmission(ctx context.Context, sub domain.Submission) error {
	if s.failures.Add(-1) >= 0 {
		return errors.New("connection reset")
	}
	return s.SubmissionStore.CreateSubmission(ctx, sub)
}

func TestFailedPersistKeepsAttemptForRetry(t *testing.T) {
	ctx := context.Background()
	jobs := memory.NewJobStore()
	users := memory.NewUserStore()
	attempts := memory.NewAttemptStore()
	submissions := &flakySubmissions{SubmissionStore: memory.NewSubmissionStore()}
	submissions.failures.Store(1)
	service := app.NewContestService(memory.NewJobCache(jobs, jobs, time.Minute), submissions, users, attempts,
		app.WithClock(app.NewManualClock(testStart)), app.WithLogger(logging.Discard()))

	employer := domain.User{ID: "e1", Role: domain.RoleEmployer}
	job, err := service.CreateJob(ctx, employer, domain.Job{
		Title: "Analyst",
		Trials: []domain.Trial{
			{ID: "q1", Type: domain.TrialMCQ, Points: 10, QuestionText: "?", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
		},
		StartDate: testStart.Add(-time.Hour),
		EndDate:   testStart.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	_, err = service.RecordAnswer(ctx, "c1", job.ID, domain.ChoiceAnswer("q1", 1))
	require.NoError(t, err)

	_, err = service.SubmitAttempt(ctx, "c1", job.ID)
	require.Error(t, err)
	assert.Equal(t, 1, attempts.Len())

	// the candidate cannot restart with a fresh countdown or throw the answers away
	status, err := service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, app.AttemptFinalized, status.State)
	require.NotNil(t, status.Submission)
	assert.ErrorIs(t, service.AbandonAttempt(ctx, "c1", job.ID), domain.ErrAttemptFinalized)

	sub, err := service.SubmitAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Submission.ID, sub.ID)
	assert.Equal(t, 10, sub.Score)
	assert.Equal(t, 0, attempts.Len())
	count, err := submissions.CountByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLeaderboardIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, 0)
	f.candidate(t, "c1", "alice@example.com")
	_, err := f.service.StartAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)
	_, err = f.service.SubmitAttempt(ctx, "c1", job.ID)
	require.NoError(t, err)

	_, err = f.service.Leaderboard(ctx, "c1", job.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.service.Leaderboard(ctx, "employer-2", job.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.service.Leaderboard(ctx, f.employer.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	lb, err := f.service.Leaderboard(ctx, f.employer.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, "alice@example.com", lb.Entries[0].CandidateEmail)
}

func TestCreateJobFromDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	draft := domain.NewJobDraft("Support Lead", "Acme", "")
	trial, err := draft.AddTrial(domain.TrialTextResponse)
	require.NoError(t, err)
	trial.Prompt = "How do you handle an angry customer?"
	require.NoError(t, draft.UpdateTrial(trial))

	_, err = f.service.CreateJobFromDraft(ctx, domain.User{ID: "c1", Role: domain.RoleCandidate}, draft, testStart, testStart.Add(time.Hour), 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.service.CreateJobFromDraft(ctx, f.employer, draft, testStart, testStart, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	job, err := f.service.CreateJobFromDraft(ctx, f.employer, draft, testStart, testStart.Add(time.Hour), 20)
	require.NoError(t, err)
	assert.Equal(t, f.employer.ID, job.EmployerID)
	assert.Equal(t, 20, job.ContestDurationMinutes)
	require.Len(t, job.Trials, 1)
	assert.Equal(t, trial.ID, job.Trials[0].ID)
}
