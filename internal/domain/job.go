package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Validate checks the job header, window and every trial.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return errors.Wrap(ErrInvalidJob, "title required")
	}
	if j.StartDate.IsZero() || j.EndDate.IsZero() {
		return errors.Wrap(ErrInvalidWindow, "start and end dates required")
	}
	if !j.EndDate.After(j.StartDate) {
		return ErrInvalidWindow
	}
	if len(j.Trials) > MaxTrials {
		return ErrTooManyTrials
	}
	seen := make(map[string]struct{}, len(j.Trials))
	for _, t := range j.Trials {
		if _, dup := seen[t.ID]; dup {
			return errors.Wrapf(ErrInvalidTrial, "duplicate trial id %s", t.ID)
		}
		seen[t.ID] = struct{}{}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AvailableAt reports whether now lies within [StartDate, EndDate], inclusive at both ends.
func (j Job) AvailableAt(now time.Time) bool {
	return !now.Before(j.StartDate) && !now.After(j.EndDate)
}

// Timed reports whether attempts on this job run against a countdown.
func (j Job) Timed() bool {
	return j.ContestDurationMinutes > 0
}

// TimeLimit is the countdown length, or zero for untimed jobs.
func (j Job) TimeLimit() time.Duration {
	if !j.Timed() {
		return 0
	}
	return time.Duration(j.ContestDurationMinutes) * time.Minute
}

// Trial looks up a trial by id.
func (j Job) Trial(id string) (Trial, bool) {
	for _, t := range j.Trials {
		if t.ID == id {
			return t, true
		}
	}
	return Trial{}, false
}
