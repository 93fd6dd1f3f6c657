package app

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/domain"
	"hiring-contest-service/internal/metrics"
)

//go:generate mockgen -source=./suggestion_service.go -destination=./mocks/suggester.mock.go -package=appmocks TrialSuggester

// TrialSuggester is the external question-suggestion capability. Implementations may
// fail or return a canned suggestion when offline.
type TrialSuggester interface {
	Suggest(ctx context.Context, req domain.SuggestionRequest) (domain.Suggestion, error)
}

const defaultSuggestionTimeout = 30 * time.Second

// SuggestionService calls the suggester without ever touching the draft on failure.
type SuggestionService struct {
	suggester TrialSuggester
	timeout   time.Duration
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
}

func NewSuggestionService(suggester TrialSuggester, timeout time.Duration, log logrus.FieldLogger, m *metrics.Metrics) *SuggestionService {
	if timeout <= 0 {
		timeout = defaultSuggestionTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SuggestionService{suggester: suggester, timeout: timeout, log: log, metrics: m}
}

// Suggest asks for one trial and validates the response shape. Responses arriving after
// ctx ended are dropped and ctx's error is returned instead.
func (s *SuggestionService) Suggest(ctx context.Context, req domain.SuggestionRequest) (domain.Suggestion, error) {
	if strings.TrimSpace(req.JobTitle) == "" {
		return domain.Suggestion{}, errors.Wrap(domain.ErrInvalidJob, "enter a job title first to get relevant suggestions")
	}
	if !req.TrialType.Valid() {
		return domain.Suggestion{}, errors.Wrapf(domain.ErrInvalidTrial, "unknown trial type %q", req.TrialType)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	suggestion, err := s.suggester.Suggest(callCtx, req)

	fields := logrus.Fields{"trial_type": req.TrialType, "job_title": req.JobTitle}
	if ctx.Err() != nil {
		s.metrics.Suggestion(string(req.TrialType), "discarded")
		s.log.WithFields(fields).Debug("suggestion discarded, caller went away")
		return domain.Suggestion{}, ctx.Err()
	}
	if err != nil {
		s.metrics.Suggestion(string(req.TrialType), "failed")
		s.log.WithFields(fields).WithError(err).Warn("suggestion failed")
		return domain.Suggestion{}, errors.Wrap(domain.ErrSuggestionUnavailable, err.Error())
	}
	if err := suggestion.Validate(req.TrialType); err != nil {
		s.metrics.Suggestion(string(req.TrialType), "invalid")
		s.log.WithFields(fields).WithError(err).Warn("suggestion rejected")
		return domain.Suggestion{}, err
	}
	s.metrics.Suggestion(string(req.TrialType), "ok")
	return suggestion, nil
}

// SuggestInto fills the draft trial with a suggestion. On any error the draft is unchanged.
func (s *SuggestionService) SuggestInto(ctx context.Context, draft *domain.JobDraft, trialID string) error {
	req, err := draft.SuggestionRequest(trialID)
	if err != nil {
		return err
	}
	suggestion, err := s.Suggest(ctx, req)
	if err != nil {
		return err
	}
	return draft.ApplySuggestion(trialID, suggestion)
}
