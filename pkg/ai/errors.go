package ai

import "errors"

// Stage failures. Adapters wrap provider errors with one of these so the
// pipeline can tell which stage failed.
var (
	ErrTranscription = errors.New("transcription failed")
	ErrSummarization = errors.New("summarization failed")
	ErrExtraction    = errors.New("task extraction failed")

	// ErrMalformedOutput marks a provider response that does not match the expected shape
	ErrMalformedOutput = errors.New("malformed provider output")
)

// ErrRecordingNotFound is returned by a RecordingSource when the file reference does not resolve
var ErrRecordingNotFound = errors.New("recording not found")
