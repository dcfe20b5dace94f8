// Package gemini provides the Gemini-backed analysis client, selected when
// ANALYSIS_PROVIDER=gemini.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Analyzer implements api.Analyzer on the Gemini generate-content endpoint.
type Analyzer struct {
	client *genai.Client
	model  string
}

func NewAnalyzer(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Analyzer{client: client, model: model}, nil
}

func (a *Analyzer) Model() string { return a.model }

func (a *Analyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
	})
	if err != nil {
		return "", fmt.Errorf("generate content request: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generate content returned empty response")
	}
	return text, nil
}
