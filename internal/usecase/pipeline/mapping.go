package pipeline

import (
	"strings"
	"time"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

const dueDateLayout = "2006-01-02"

// MapPriority maps model priority text to a TaskPriority, defaulting to medium
func MapPriority(text *string) entities.TaskPriority {
	if text == nil {
		return entities.TaskPriorityMedium
	}
	p := entities.TaskPriority(strings.ToLower(strings.TrimSpace(*text)))
	if !p.IsValid() {
		return entities.TaskPriorityMedium
	}
	return p
}

// ParseDueDate accepts only YYYY-MM-DD; anything else yields nil
func ParseDueDate(text *string) *time.Time {
	if text == nil {
		return nil
	}
	d, err := time.Parse(dueDateLayout, *text)
	if err != nil {
		return nil
	}
	return &d
}
