package caption

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/signbridge/signbridge-api/config"
	"github.com/signbridge/signbridge-api/internal/types"
)

// Summarizer produces a short lesson summary from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, string, error) // summary, model, error
}

// GeminiSummarizer wraps the Gemini client. Nil when no API key is
// configured; the service treats that as feature-unavailable.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer returns (nil, nil) when no API key is configured.
func NewGeminiSummarizer(ctx context.Context, cfg config.AIConfig) (*GeminiSummarizer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

const summaryPrompt = `You are helping a classroom accessibility tool.
Summarize the following lesson transcript in at most five short bullet points,
keeping the original language of the transcript:

%s`

func (g *GeminiSummarizer) Summarize(ctx context.Context, transcript string) (string, string, error) {
	if transcript == "" {
		return "", g.model, fmt.Errorf("transcript is empty: %w", types.ErrBadRequest)
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(fmt.Sprintf(summaryPrompt, transcript)), nil)
	if err != nil {
		return "", g.model, fmt.Errorf("summary generation failed: %w", err)
	}
	return result.Text(), g.model, nil
}
