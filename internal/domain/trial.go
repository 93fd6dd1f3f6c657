package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// MaxTrials caps the number of trials on one job.
	MaxTrials = 10
	// MinOptions is the smallest option list an MCQ may carry.
	MinOptions = 2
	// SuggestedOptions is the exact option count a suggested MCQ must have.
	SuggestedOptions = 4

	defaultTrialPoints = 10
)

// Valid reports whether t is a known variant.
func (t TrialType) Valid() bool {
	switch t {
	case TrialMCQ, TrialTextResponse, TrialCoding, TrialDeliverable:
		return true
	}
	return false
}

// AutoGraded reports whether trials of this type are scored by exact match.
func (t TrialType) AutoGraded() bool {
	return t == TrialMCQ
}

// NewTrial returns an empty trial of the given type with editor defaults.
func NewTrial(t TrialType) (Trial, error) {
	trial := Trial{ID: uuid.NewString(), Type: t, Points: defaultTrialPoints}
	switch t {
	case TrialMCQ:
		trial.Options = make([]string, SuggestedOptions)
	case TrialTextResponse, TrialCoding, TrialDeliverable:
	default:
		return Trial{}, errors.Wrapf(ErrInvalidTrial, "unknown trial type %q", t)
	}
	return trial, nil
}

// Text is what a candidate reads for this trial.
func (t Trial) Text() string {
	if t.Type == TrialMCQ {
		return t.QuestionText
	}
	return t.Prompt
}

// Validate checks the trial against its variant rules.
func (t Trial) Validate() error {
	if t.ID == "" {
		return errors.Wrap(ErrInvalidTrial, "missing id")
	}
	if t.Points < 0 {
		return errors.Wrapf(ErrInvalidTrial, "trial %s: negative points", t.ID)
	}
	switch t.Type {
	case TrialMCQ:
		if strings.TrimSpace(t.QuestionText) == "" {
			return errors.Wrapf(ErrInvalidTrial, "trial %s: question text required", t.ID)
		}
		if len(t.Options) < MinOptions {
			return errors.Wrapf(ErrInvalidTrial, "trial %s: at least %d options required", t.ID, MinOptions)
		}
		for i, opt := range t.Options {
			if strings.TrimSpace(opt) == "" {
				return errors.Wrapf(ErrInvalidTrial, "trial %s: option %d is empty", t.ID, i)
			}
		}
		if t.CorrectAnswerIndex < 0 || t.CorrectAnswerIndex >= len(t.Options) {
			return errors.Wrapf(ErrInvalidTrial, "trial %s: correct answer index %d out of range", t.ID, t.CorrectAnswerIndex)
		}
	case TrialTextResponse, TrialCoding, TrialDeliverable:
		if strings.TrimSpace(t.Prompt) == "" {
			return errors.Wrapf(ErrInvalidTrial, "trial %s: prompt required", t.ID)
		}
	default:
		return errors.Wrapf(ErrInvalidTrial, "trial %s: unknown type %q", t.ID, t.Type)
	}
	return nil
}

// ResizeOptions grows or shrinks the option list to n, keeping CorrectAnswerIndex in range.
func (t *Trial) ResizeOptions(n int) error {
	if t.Type != TrialMCQ {
		return errors.Wrapf(ErrInvalidTrial, "trial %s has no options", t.ID)
	}
	if n < MinOptions {
		return errors.Wrapf(ErrInvalidTrial, "trial %s: at least %d options required", t.ID, MinOptions)
	}
	options := make([]string, n)
	copy(options, t.Options)
	t.Options = options
	if t.CorrectAnswerIndex >= n {
		t.CorrectAnswerIndex = n - 1
	}
	if t.CorrectAnswerIndex < 0 {
		t.CorrectAnswerIndex = 0
	}
	return nil
}

// CheckAnswer verifies that a carries the value kind this trial expects.
func (t Trial) CheckAnswer(a Answer) error {
	switch t.Type {
	case TrialMCQ:
		if a.Kind != AnswerChoice || a.Choice == nil {
			return errors.Wrapf(ErrInvalidAnswer, "trial %s expects an option index", t.ID)
		}
		if *a.Choice < 0 || *a.Choice >= len(t.Options) {
			return errors.Wrapf(ErrInvalidAnswer, "trial %s: option %d out of range", t.ID, *a.Choice)
		}
	case TrialTextResponse, TrialCoding:
		if a.Kind != AnswerText {
			return errors.Wrapf(ErrInvalidAnswer, "trial %s expects text", t.ID)
		}
	case TrialDeliverable:
		if a.Kind != AnswerFile || a.File == nil {
			return errors.Wrapf(ErrInvalidAnswer, "trial %s expects a file", t.ID)
		}
	default:
		return errors.Wrapf(ErrInvalidTrial, "trial %s: unknown type %q", t.ID, t.Type)
	}
	return nil
}

// ChoiceAnswer builds an MCQ answer.
func ChoiceAnswer(trialID string, index int) Answer {
	return Answer{TrialID: trialID, Kind: AnswerChoice, Choice: &index}
}

// TextAnswer builds an answer for text and coding trials.
func TextAnswer(trialID, text string) Answer {
	return Answer{TrialID: trialID, Kind: AnswerText, Text: text}
}

// FileAnswer builds a deliverable answer.
func FileAnswer(trialID, fileName string, payload []byte) Answer {
	return Answer{TrialID: trialID, Kind: AnswerFile, File: &FileRef{FileName: fileName, Payload: payload}}
}

// Empty reports whether the answer carries no usable value. A deliverable without a
// selected file is empty.
func (a Answer) Empty() bool {
	switch a.Kind {
	case AnswerChoice:
		return a.Choice == nil
	case AnswerFile:
		return a.File == nil || a.File.FileName == ""
	}
	return false
}

// Validate checks a suggestion for the given trial type.
func (s Suggestion) Validate(t TrialType) error {
	switch t {
	case TrialMCQ:
		if strings.TrimSpace(s.QuestionText) == "" {
			return errors.Wrap(ErrInvalidSuggestion, "missing question text")
		}
		if len(s.Options) != SuggestedOptions {
			return errors.Wrapf(ErrInvalidSuggestion, "expected %d options, got %d", SuggestedOptions, len(s.Options))
		}
		if s.CorrectAnswerIndex == nil || *s.CorrectAnswerIndex < 0 || *s.CorrectAnswerIndex >= len(s.Options) {
			return errors.Wrap(ErrInvalidSuggestion, "correct answer index out of range")
		}
	case TrialTextResponse, TrialCoding, TrialDeliverable:
		if strings.TrimSpace(s.Prompt) == "" {
			return errors.Wrap(ErrInvalidSuggestion, "missing prompt")
		}
	default:
		return errors.Wrapf(ErrInvalidSuggestion, "unknown trial type %q", t)
	}
	return nil
}

// WithSuggestion returns a copy of t with the populated suggestion fields merged in.
func (t Trial) WithSuggestion(s Suggestion) Trial {
	out := t
	if t.Type == TrialMCQ {
		out.QuestionText = s.QuestionText
		out.Options = append([]string(nil), s.Options...)
		if s.CorrectAnswerIndex != nil {
			out.CorrectAnswerIndex = *s.CorrectAnswerIndex
		}
		return out
	}
	out.Prompt = s.Prompt
	return out
}
