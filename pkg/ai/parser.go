package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/validator"
)

var (
	summaryKeys = []string{"summary", "key_points", "decisions", "next_steps"}
	validate    = validator.New()
)

// ParseStructuredSummary decodes a summarizer response. The payload must be a
// JSON object with exactly the summary, key_points, decisions and next_steps keys.
func ParseStructuredSummary(content string) (*entities.StructuredSummary, error) {
	payload := []byte(extractJSON(content))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: summary is not a JSON object: %v", ErrMalformedOutput, err)
	}
	for _, key := range summaryKeys {
		raw, ok := fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: summary is missing %q", ErrMalformedOutput, key)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, fmt.Errorf("%w: summary field %q is null", ErrMalformedOutput, key)
		}
	}

	var summary entities.StructuredSummary
	if err := decodeStrict(payload, &summary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if strings.TrimSpace(summary.Summary) == "" {
		return nil, fmt.Errorf("%w: summary text is empty", ErrMalformedOutput)
	}
	if err := validate.Validate(&summary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &summary, nil
}

// ParseTaskDrafts decodes an extractor response: either a JSON array of drafts
// or an object whose only key is "tasks" holding that array.
func ParseTaskDrafts(content string) ([]entities.TaskDraft, error) {
	payload := []byte(extractJSON(content))

	var items []json.RawMessage
	switch firstByte(payload) {
	case '[':
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, fmt.Errorf("%w: tasks are not a JSON array: %v", ErrMalformedOutput, err)
		}
	case '{':
		var wrapper struct {
			Tasks *[]json.RawMessage `json:"tasks"`
		}
		if err := decodeStrict(payload, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		if wrapper.Tasks == nil {
			return nil, fmt.Errorf("%w: tasks object is missing \"tasks\"", ErrMalformedOutput)
		}
		items = *wrapper.Tasks
	default:
		return nil, fmt.Errorf("%w: tasks response is not JSON", ErrMalformedOutput)
	}

	drafts := make([]entities.TaskDraft, 0, len(items))
	for i, item := range items {
		var draft entities.TaskDraft
		if err := decodeStrict(item, &draft); err != nil {
			return nil, fmt.Errorf("%w: task %d: %v", ErrMalformedOutput, i, err)
		}
		draft.Title = strings.TrimSpace(draft.Title)
		if err := validate.Validate(&draft); err != nil {
			return nil, fmt.Errorf("%w: task %d: %v", ErrMalformedOutput, i, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// decodeStrict decodes exactly one JSON value and rejects unknown fields
func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
