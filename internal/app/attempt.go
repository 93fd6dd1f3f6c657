package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"hiring-contest-service/internal/domain"
)

// AttemptState is the lifecycle position of an attempt.
type AttemptState string

const (
	AttemptInProgress AttemptState = "IN_PROGRESS"
	AttemptFinalized  AttemptState = "FINALIZED"
)

// FinalizeTrigger records who asked for finalization.
type FinalizeTrigger string

const (
	TriggerManual FinalizeTrigger = "manual"
	TriggerExpiry FinalizeTrigger = "expiry"
)

// FinalizeFunc persists the submission produced by the first finalization. It runs while
// the attempt is locked and must not call back into the attempt.
type FinalizeFunc func(sub domain.Submission, trigger FinalizeTrigger) error

// AttemptStatus is a snapshot of an attempt for display.
type AttemptStatus struct {
	JobID       string       `json:"jobId"`
	CandidateID string       `json:"candidateId"`
	State       AttemptState `json:"state"`
	StartedAt   time.Time    `json:"startedAt"`
	// RemainingSeconds is -1 for untimed attempts and never below zero otherwise.
	RemainingSeconds int64              `json:"remainingSeconds"`
	ElapsedSeconds   int64              `json:"elapsedSeconds"`
	Answered         int                `json:"answered"`
	TotalTrials      int                `json:"totalTrials"`
	Submission       *domain.Submission `json:"submission,omitempty"`
}

// Attempt is one candidate's run through one job. It moves from in-progress to finalized
// exactly once, whichever of a manual submit or the countdown gets there first.
type Attempt struct {
	job         domain.Job
	candidateID string
	clock       Clock
	startedAt   time.Time
	newID       func() string
	onFinalize  FinalizeFunc

	mu          sync.Mutex
	state       AttemptState
	abandoned   bool
	answers     map[string]domain.Answer
	submission  domain.Submission
	finalizeErr error
	done        chan struct{}
}

// StartAttempt records the start instant and, for timed jobs, arms the countdown.
// Availability and prior submissions are checked by the caller.
func StartAttempt(job domain.Job, candidateID string, clock Clock, newID func() string, onFinalize FinalizeFunc) *Attempt {
	if clock == nil {
		clock = SystemClock{}
	}
	if newID == nil {
		newID = uuid.NewString
	}
	if onFinalize == nil {
		onFinalize = func(domain.Submission, FinalizeTrigger) error { return nil }
	}
	a := &Attempt{
		job:         job,
		candidateID: candidateID,
		clock:       clock,
		startedAt:   clock.Now(),
		newID:       newID,
		onFinalize:  onFinalize,
		state:       AttemptInProgress,
		answers:     make(map[string]domain.Answer),
		done:        make(chan struct{}),
	}
	if job.Timed() {
		go a.countdown(clock.NewTicker(time.Second))
	}
	return a
}

func (a *Attempt) Job() domain.Job       { return a.job }
func (a *Attempt) CandidateID() string   { return a.candidateID }
func (a *Attempt) StartedAt() time.Time  { return a.startedAt }
func (a *Attempt) Done() <-chan struct{} { return a.done }

// RecordAnswer stores a for its trial, replacing any earlier answer.
func (a *Attempt) RecordAnswer(answer domain.Answer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.abandoned {
		return domain.ErrAttemptNotFound
	}
	if a.state != AttemptInProgress {
		return domain.ErrAttemptFinalized
	}
	a.answers[answer.TrialID] = answer
	return nil
}

// ClearAnswer drops the answer for trialID, if any.
func (a *Attempt) ClearAnswer(trialID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.abandoned {
		return domain.ErrAttemptNotFound
	}
	if a.state != AttemptInProgress {
		return domain.ErrAttemptFinalized
	}
	delete(a.answers, trialID)
	return nil
}

// Finalize is the manual submit. Calls after the first return the recorded submission
// and never score again. If storing it failed, the same submission is stored again.
func (a *Attempt) Finalize() (domain.Submission, error) {
	sub, _, err := a.finalize(TriggerManual)
	return sub, err
}

// Abandon discards the attempt without producing a submission.
func (a *Attempt) Abandon() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.abandoned {
		return nil
	}
	if a.state != AttemptInProgress {
		return domain.ErrAttemptFinalized
	}
	a.abandoned = true
	close(a.done)
	return nil
}

// Result returns the submission once the attempt is finalized.
func (a *Attempt) Result() (domain.Submission, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AttemptFinalized {
		return domain.Submission{}, false, nil
	}
	return a.submission, true, a.finalizeErr
}

func (a *Attempt) Status() AttemptStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	st := AttemptStatus{
		JobID:            a.job.ID,
		CandidateID:      a.candidateID,
		State:            a.state,
		StartedAt:        a.startedAt,
		RemainingSeconds: -1,
		ElapsedSeconds:   a.elapsedSeconds(now),
		Answered:         len(a.answers),
		TotalTrials:      len(a.job.Trials),
	}
	if a.job.Timed() {
		st.RemainingSeconds = max(a.remainingSeconds(now), 0)
	}
	if a.state == AttemptFinalized {
		sub := a.submission
		st.Submission = &sub
		st.ElapsedSeconds = sub.DurationSeconds
		st.Answered = len(sub.Answers)
	}
	return st
}

func (a *Attempt) countdown(t Ticker) {
	defer t.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-t.C():
			if a.remainingSeconds(a.clock.Now()) <= 0 {
				_, _, _ = a.finalize(TriggerExpiry)
				return
			}
		}
	}
}

func (a *Attempt) finalize(trigger FinalizeTrigger) (domain.Submission, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.abandoned {
		return domain.Submission{}, false, domain.ErrAttemptNotFound
	}
	if a.state == AttemptFinalized {
		if a.finalizeErr != nil {
			a.finalizeErr = a.onFinalize(a.submission, trigger)
		}
		return a.submission, false, a.finalizeErr
	}

	now := a.clock.Now()
	answers := make([]domain.Answer, 0, len(a.answers))
	for _, trial := range a.job.Trials {
		if ans, ok := a.answers[trial.ID]; ok {
			answers = append(answers, ans)
		}
	}
	score, total := Score(a.job.Trials, answers)

	a.submission = domain.Submission{
		ID:              a.newID(),
		JobID:           a.job.ID,
		CandidateID:     a.candidateID,
		Answers:         answers,
		Score:           score,
		Total:           total,
		SubmissionTime:  now,
		DurationSeconds: a.elapsedSeconds(now),
	}
	a.state = AttemptFinalized
	a.finalizeErr = a.onFinalize(a.submission, trigger)
	close(a.done)
	return a.submission, true, a.finalizeErr
}

func (a *Attempt) elapsedSeconds(now time.Time) int64 {
	elapsed := int64(now.Sub(a.startedAt) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (a *Attempt) remainingSeconds(now time.Time) int64 {
	return int64(a.job.TimeLimit()/time.Second) - a.elapsedSeconds(now)
}
