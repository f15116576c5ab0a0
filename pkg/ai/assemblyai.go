package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

// AssemblyAITranscriber transcribes recordings with the AssemblyAI SDK.
// The recording is streamed from storage to AssemblyAI's upload endpoint and
// the transcript is awaited synchronously.
type AssemblyAITranscriber struct {
	client   *aai.Client
	source   RecordingSource
	language string
	retry    RetryPolicy
	logger   *zap.Logger
}

// NewAssemblyAITranscriber creates a transcriber from AI settings
func NewAssemblyAITranscriber(cfg *config.AIConfig, source RecordingSource, logger *zap.Logger) *AssemblyAITranscriber {
	opts := []aai.ClientOption{aai.WithAPIKey(cfg.AssemblyAPIKey)}
	if cfg.AssemblyBaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.AssemblyBaseURL))
	}

	return &AssemblyAITranscriber{
		client:   aai.NewClientWithOptions(opts...),
		source:   source,
		language: cfg.LanguageCode,
		retry:    RetryPolicyFromConfig(cfg),
		logger:   logger,
	}
}

// Transcribe returns the full transcript text of the recording at fileRef
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, fileRef string) (string, error) {
	var text string

	submitFn := func() error {
		body, err := t.source.Open(ctx, fileRef)
		if err != nil {
			return backoffPermanentOnMissing(err)
		}
		defer body.Close()

		if t.logger != nil {
			t.logger.Info("📤 Uploading recording to AssemblyAI", zap.String("file_ref", fileRef))
		}

		uploadURL, err := t.client.Upload(ctx, body)
		if err != nil {
			return fmt.Errorf("upload to AssemblyAI: %w", err)
		}

		params := &aai.TranscriptOptionalParams{}
		if t.language != "" {
			params.LanguageCode = aai.TranscriptLanguageCode(t.language)
		} else {
			params.LanguageDetection = aai.Bool(true)
		}

		transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
		if err != nil {
			return fmt.Errorf("transcribe: %w", err)
		}

		if transcript.Status == aai.TranscriptStatusError {
			msg := "AssemblyAI transcription failed"
			if transcript.Error != nil {
				msg = fmt.Sprintf("AssemblyAI error: %s", *transcript.Error)
			}
			return errors.New(msg)
		}

		if transcript.Text != nil {
			text = strings.TrimSpace(*transcript.Text)
		}
		return nil
	}

	if err := retry(ctx, t.retry, submitFn); err != nil {
		if t.logger != nil {
			t.logger.Error("❌ AssemblyAI transcription failed",
				zap.String("file_ref", fileRef),
				zap.Error(err),
			)
		}
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscription)
	}

	if t.logger != nil {
		t.logger.Info("✅ Transcription completed",
			zap.String("file_ref", fileRef),
			zap.Int("length", len(text)),
		)
	}
	return text, nil
}
