package suggest

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
	"hiring-contest-service/internal/domain"
)

const DefaultModel = "gpt-4o-mini"

// OpenAI asks an OpenAI-compatible chat completions endpoint for suggestions.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string, opts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = DefaultModel
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)
	return &OpenAI{client: openai.NewClient(reqOpts...), model: model}
}

func (o *OpenAI) Suggest(ctx context.Context, req domain.SuggestionRequest) (domain.Suggestion, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(Prompt(req)),
		}),
		Model: openai.F(o.model),
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.Suggestion{}, errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return domain.Suggestion{}, errors.Wrap(domain.ErrInvalidSuggestion, "empty completion")
	}
	return Decode(resp.Choices[0].Message.Content)
}
