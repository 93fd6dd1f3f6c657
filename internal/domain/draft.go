package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// JobDraft is a job under construction by an employer. Every mutation either succeeds
// completely or leaves the draft untouched.
type JobDraft struct {
	Title       string
	CompanyName string
	Description string
	trials      []Trial
}

// NewJobDraft starts an empty draft.
func NewJobDraft(title, companyName, description string) *JobDraft {
	return &JobDraft{Title: title, CompanyName: companyName, Description: description}
}

// RestoreJobDraft rebuilds a draft from trials held by the client. Trials without an id
// get one; the structural editor rules apply, content may still be incomplete.
func RestoreJobDraft(title, companyName, description string, trials []Trial) (*JobDraft, error) {
	if len(trials) > MaxTrials {
		return nil, ErrTooManyTrials
	}
	d := NewJobDraft(title, companyName, description)
	seen := make(map[string]struct{}, len(trials))
	for _, t := range trials {
		if !t.Type.Valid() {
			return nil, errors.Wrapf(ErrInvalidTrial, "unknown trial type %q", t.Type)
		}
		if t.Points < 0 {
			return nil, errors.Wrapf(ErrInvalidTrial, "trial %s: negative points", t.ID)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, dup := seen[t.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidTrial, "duplicate trial id %s", t.ID)
		}
		seen[t.ID] = struct{}{}
		t.Options = append([]string(nil), t.Options...)
		d.trials = append(d.trials, t)
	}
	return d, nil
}

// Trials returns a copy of the draft's trials in display order.
func (d *JobDraft) Trials() []Trial {
	out := make([]Trial, len(d.trials))
	for i, t := range d.trials {
		out[i] = t
		out[i].Options = append([]string(nil), t.Options...)
	}
	return out
}

// AddTrial appends a new empty trial of type t.
func (d *JobDraft) AddTrial(t TrialType) (Trial, error) {
	if len(d.trials) >= MaxTrials {
		return Trial{}, ErrTooManyTrials
	}
	trial, err := NewTrial(t)
	if err != nil {
		return Trial{}, err
	}
	d.trials = append(d.trials, trial)
	return trial, nil
}

// RemoveTrial drops the trial with the given id.
func (d *JobDraft) RemoveTrial(id string) error {
	i := d.index(id)
	if i < 0 {
		return ErrTrialNotFound
	}
	d.trials = append(d.trials[:i], d.trials[i+1:]...)
	return nil
}

// UpdateTrial replaces the trial with the same id. The type cannot change and an MCQ
// index must stay inside its options.
func (d *JobDraft) UpdateTrial(updated Trial) error {
	i := d.index(updated.ID)
	if i < 0 {
		return ErrTrialNotFound
	}
	if updated.Type != d.trials[i].Type {
		return errors.Wrapf(ErrInvalidTrial, "trial %s: type cannot change", updated.ID)
	}
	if updated.Points < 0 {
		return errors.Wrapf(ErrInvalidTrial, "trial %s: negative points", updated.ID)
	}
	if updated.Type == TrialMCQ {
		if len(updated.Options) < MinOptions {
			return errors.Wrapf(ErrInvalidTrial, "trial %s: at least %d options required", updated.ID, MinOptions)
		}
		if updated.CorrectAnswerIndex < 0 || updated.CorrectAnswerIndex >= len(updated.Options) {
			return errors.Wrapf(ErrInvalidTrial, "trial %s: correct answer index out of range", updated.ID)
		}
		updated.Options = append([]string(nil), updated.Options...)
	}
	d.trials[i] = updated
	return nil
}

// ResizeOptions changes the option count of an MCQ trial.
func (d *JobDraft) ResizeOptions(id string, n int) error {
	i := d.index(id)
	if i < 0 {
		return ErrTrialNotFound
	}
	t := d.trials[i]
	if err := t.ResizeOptions(n); err != nil {
		return err
	}
	d.trials[i] = t
	return nil
}

// ExistingPrompts lists the non-empty texts already used by trials of type t, so a
// suggestion can avoid repeating them.
func (d *JobDraft) ExistingPrompts(t TrialType) []string {
	var out []string
	for _, trial := range d.trials {
		if trial.Type != t {
			continue
		}
		if text := strings.TrimSpace(trial.Text()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// SuggestionRequest builds the collaborator request for the trial with the given id.
func (d *JobDraft) SuggestionRequest(id string) (SuggestionRequest, error) {
	i := d.index(id)
	if i < 0 {
		return SuggestionRequest{}, ErrTrialNotFound
	}
	t := d.trials[i].Type
	return SuggestionRequest{
		JobTitle:        d.Title,
		TrialType:       t,
		ExistingPrompts: d.ExistingPrompts(t),
	}, nil
}

// ApplySuggestion merges a validated suggestion into the trial with the given id.
func (d *JobDraft) ApplySuggestion(id string, s Suggestion) error {
	i := d.index(id)
	if i < 0 {
		return ErrTrialNotFound
	}
	if err := s.Validate(d.trials[i].Type); err != nil {
		return err
	}
	d.trials[i] = d.trials[i].WithSuggestion(s)
	return nil
}

// Build turns the draft into a validated job. Ids and owner are assigned on creation.
func (d *JobDraft) Build(start, end time.Time, durationMinutes int) (Job, error) {
	job := Job{
		Title:                  d.Title,
		CompanyName:            d.CompanyName,
		Description:            d.Description,
		Trials:                 d.Trials(),
		StartDate:              start,
		EndDate:                end,
		ContestDurationMinutes: durationMinutes,
	}
	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (d *JobDraft) index(id string) int {
	for i, t := range d.trials {
		if t.ID == id {
			return i
		}
	}
	return -1
}
