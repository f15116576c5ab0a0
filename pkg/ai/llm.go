package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	backoff "github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

const (
	summaryTemperature    = 0.3
	summaryMaxTokens      = 1500
	extractionTemperature = 0.2
	extractionMaxTokens   = 1000
)

// NewOpenAIClient builds a client for any OpenAI-compatible endpoint (Groq by default)
func NewOpenAIClient(cfg *config.AIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientCfg.BaseURL = cfg.LLMBaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// chatJSON sends a system+user prompt in JSON mode and returns the raw content
func chatJSON(ctx context.Context, client *openai.Client, model, system, user string, temperature float32, maxTokens int) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrMalformedOutput)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	return content, nil
}

// backoffPermanentOnMissing stops retrying when the recording itself is gone
func backoffPermanentOnMissing(err error) error {
	if errors.Is(err, ErrRecordingNotFound) {
		return backoff.Permanent(err)
	}
	return fmt.Errorf("open recording: %w", err)
}
