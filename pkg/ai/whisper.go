package ai

import (
	"context"
	"fmt"
	"path"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

// WhisperTranscriber transcribes recordings through an OpenAI-compatible
// audio transcription endpoint
type WhisperTranscriber struct {
	client *openai.Client
	source RecordingSource
	model  string
	retry  RetryPolicy
	logger *zap.Logger
}

// NewWhisperTranscriber creates a transcriber sharing the LLM endpoint settings
func NewWhisperTranscriber(cfg *config.AIConfig, source RecordingSource, logger *zap.Logger) *WhisperTranscriber {
	model := cfg.WhisperModel
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client: NewOpenAIClient(cfg),
		source: source,
		model:  model,
		retry:  RetryPolicyFromConfig(cfg),
		logger: logger,
	}
}

// Transcribe returns the transcript text of the recording at fileRef
func (w *WhisperTranscriber) Transcribe(ctx context.Context, fileRef string) (string, error) {
	var text string

	err := retry(ctx, w.retry, func() error {
		body, err := w.source.Open(ctx, fileRef)
		if err != nil {
			return backoffPermanentOnMissing(err)
		}
		defer body.Close()

		resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    w.model,
			FilePath: path.Base(fileRef),
			Reader:   body,
			Format:   openai.AudioResponseFormatJSON,
		})
		if err != nil {
			return err
		}
		text = strings.TrimSpace(resp.Text)
		return nil
	})
	if err != nil {
		if w.logger != nil {
			w.logger.Error("❌ Whisper transcription failed",
				zap.String("file_ref", fileRef),
				zap.Error(err),
			)
		}
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscription)
	}
	return text, nil
}
