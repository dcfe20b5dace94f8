package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Analyzer implements api.Analyzer on the OpenAI chat completion endpoint.
type Analyzer struct {
	client *openai.Client
	model  string
}

func NewAnalyzer(client *openai.Client, model string) *Analyzer {
	if model == "" {
		model = openai.GPT4o
	}
	return &Analyzer{client: client, model: model}
}

func (a *Analyzer) Model() string { return a.model }

func (a *Analyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
