package service

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/campushq/course-scheduler-api/pkg/config"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

// GeminiClient adapts the Gemini API to the textGenerator interface used by
// the AI service.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewGeminiClient dials the Gemini API with the configured model.
func NewGeminiClient(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return nil, appErrors.Clone(appErrors.ErrAIUnavailable, "gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "failed to create gemini client")
	}
	logger.Info("gemini client initialised", zap.String("model", cfg.Model))
	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		logger: logger,
	}, nil
}

// GenerateText sends a prompt and concatenates the text parts of the first
// candidate reply.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "gemini generate failed")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", appErrors.Clone(appErrors.ErrAIUnavailable, "gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
