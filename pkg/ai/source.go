package ai

import (
	"context"
	"io"
)

// RecordingSource opens a stored recording by its file reference
type RecordingSource interface {
	Open(ctx context.Context, fileRef string) (io.ReadCloser, error)
}
