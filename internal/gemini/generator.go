// Package gemini wraps the generative-text API behind a one-method client.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

// Generator produces free-text continuations from a prompt.
type Generator struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Generator{
		client: client,
		model:  model,
	}, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate sends the prompt and returns the response text. The workflow
// wants one line of plain text, so no response schema is requested.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount: 1,
		},
	)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}
