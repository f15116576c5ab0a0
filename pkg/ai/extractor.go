package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

// TaskExtractor pulls action items out of a transcript via a chat model
type TaskExtractor struct {
	client *openai.Client
	model  string
	retry  RetryPolicy
	logger *zap.Logger
}

// NewTaskExtractor creates an extractor against the configured LLM endpoint
func NewTaskExtractor(cfg *config.AIConfig, logger *zap.Logger) *TaskExtractor {
	return &TaskExtractor{
		client: NewOpenAIClient(cfg),
		model:  cfg.LLMModel,
		retry:  RetryPolicyFromConfig(cfg),
		logger: logger,
	}
}

// Extract returns the task drafts found in transcript. participants are the
// meeting's known participant handles and are passed to the model as hints.
func (e *TaskExtractor) Extract(ctx context.Context, transcript string, participants []string) ([]entities.TaskDraft, error) {
	var drafts []entities.TaskDraft

	err := retry(ctx, e.retry, func() error {
		content, err := chatJSON(ctx, e.client, e.model, extractionSystemPrompt, extractionPrompt(transcript, participants), extractionTemperature, extractionMaxTokens)
		if err != nil {
			return err
		}
		drafts, err = ParseTaskDrafts(content)
		return err
	})
	if err != nil {
		if e.logger != nil {
			e.logger.Error("❌ Task extraction failed", zap.String("model", e.model), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	if e.logger != nil {
		e.logger.Info("✅ Tasks extracted", zap.Int("count", len(drafts)))
	}
	return drafts, nil
}
