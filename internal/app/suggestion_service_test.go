package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"hiring-contest-service/internal/app"
	appmocks "hiring-contest-service/internal/app/mocks"
	"hiring-contest-service/internal/domain"
	"hiring-contest-service/internal/logging"
)

func intPtr(i int) *int { return &i }

func TestSuggestIntoFillsMCQ(t *testing.T) {
	ctrl := gomock.NewController(t)
	suggester := appmocks.NewMockTrialSuggester(ctrl)
	svc := app.NewSuggestionService(suggester, time.Second, logging.Discard(), nil)

	draft := domain.NewJobDraft("Data Analyst", "Acme", "")
	existing, err := draft.AddTrial(domain.TrialMCQ)
	require.NoError(t, err)
	existing.QuestionText = "What is SQL?"
	existing.Options = []string{"a", "b"}
	require.NoError(t, draft.UpdateTrial(existing))
	target, err := draft.AddTrial(domain.TrialMCQ)
	require.NoError(t, err)

	suggester.EXPECT().
		Suggest(gomock.Any(), domain.SuggestionRequest{
			JobTitle:        "Data Analyst",
			TrialType:       domain.TrialMCQ,
			ExistingPrompts: []string{"What is SQL?"},
		}).
		Return(domain.Suggestion{
			QuestionText:       "Which chart suits a trend?",
			Options:            []string{"pie", "line", "radar", "table"},
			CorrectAnswerIndex: intPtr(1),
		}, nil)

	require.NoError(t, svc.SuggestInto(context.Background(), draft, target.ID))
	trials := draft.Trials()
	assert.Equal(t, "Which chart suits a trend?", trials[1].QuestionText)
	assert.Equal(t, 1, trials[1].CorrectAnswerIndex)
	assert.Len(t, trials[1].Options, 4)
}

func TestSuggestFailureLeavesDraftUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	suggester := appmocks.NewMockTrialSuggester(ctrl)
	svc := app.NewSuggestionService(suggester, time.Second, logging.Discard(), nil)

	draft := domain.NewJobDraft("Writer", "Acme", "")
	trial, err := draft.AddTrial(domain.TrialTextResponse)
	require.NoError(t, err)
	before := draft.Trials()

	suggester.EXPECT().Suggest(gomock.Any(), gomock.Any()).Return(domain.Suggestion{}, errors.New("quota exceeded"))
	err = svc.SuggestInto(context.Background(), draft, trial.ID)
	assert.ErrorIs(t, err, domain.ErrSuggestionUnavailable)
	assert.Equal(t, before, draft.Trials())
}

func TestSuggestRejectsMalformedMCQ(t *testing.T) {
	ctrl := gomock.NewController(t)
	suggester := appmocks.NewMockTrialSuggester(ctrl)
	svc := app.NewSuggestionService(suggester, time.Second, logging.Discard(), nil)

	draft := domain.NewJobDraft("Analyst", "", "")
	trial, err := draft.AddTrial(domain.TrialMCQ)
	require.NoError(t, err)
	before := draft.Trials()

	suggester.EXPECT().Suggest(gomock.Any(), gomock.Any()).Return(domain.Suggestion{
		QuestionText:       "Too few options",
		Options:            []string{"a", "b", "c"},
		CorrectAnswerIndex: intPtr(0),
	}, nil)
	err = svc.SuggestInto(context.Background(), draft, trial.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidSuggestion)
	assert.Equal(t, before, draft.Trials())
}

func TestSuggestRequiresTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	suggester := appmocks.NewMockTrialSuggester(ctrl)
	svc := app.NewSuggestionService(suggester, time.Second, logging.Discard(), nil)

	_, err := svc.Suggest(context.Background(), domain.SuggestionRequest{TrialType: domain.TrialMCQ})
	assert.ErrorIs(t, err, domain.ErrInvalidJob)
}

func TestSuggestDiscardsLateResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	suggester := appmocks.NewMockTrialSuggester(ctrl)
	svc := app.NewSuggestionService(suggester, time.Second, logging.Discard(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	suggester.EXPECT().Suggest(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.SuggestionRequest) (domain.Suggestion, error) {
			cancel()
			return domain.Suggestion{Prompt: "late"}, nil
		})

	_, err := svc.Suggest(ctx, domain.SuggestionRequest{JobTitle: "Writer", TrialType: domain.TrialCoding})
	assert.ErrorIs(t, err, context.Canceled)
}
