package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

// Summarizer turns a transcript into a StructuredSummary via a chat model
type Summarizer struct {
	client *openai.Client
	model  string
	retry  RetryPolicy
	logger *zap.Logger
}

// NewSummarizer creates a summarizer against the configured LLM endpoint
func NewSummarizer(cfg *config.AIConfig, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		client: NewOpenAIClient(cfg),
		model:  cfg.LLMModel,
		retry:  RetryPolicyFromConfig(cfg),
		logger: logger,
	}
}

// Summarize returns the structured summary of transcript. Output that does not
// decode to exactly the four summary fields is a summarization failure.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (*entities.StructuredSummary, error) {
	var summary *entities.StructuredSummary

	err := retry(ctx, s.retry, func() error {
		content, err := chatJSON(ctx, s.client, s.model, summarySystemPrompt, summaryPrompt(transcript), summaryTemperature, summaryMaxTokens)
		if err != nil {
			return err
		}
		summary, err = ParseStructuredSummary(content)
		return err
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Summarization failed", zap.String("model", s.model), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrSummarization, err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Summary generated",
			zap.Int("key_points", len(summary.KeyPoints)),
			zap.Int("decisions", len(summary.Decisions)),
			zap.Int("next_steps", len(summary.NextSteps)),
		)
	}
	return summary, nil
}
