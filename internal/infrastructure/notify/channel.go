package notify

import (
	"context"
	"errors"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

// ErrNoAddress is returned when a recipient cannot be reached on a channel
var ErrNoAddress = errors.New("notify: recipient has no address for channel")

// Channel delivers one digest to one recipient
type Channel interface {
	Name() string
	Send(ctx context.Context, user *entities.User, digest entities.Digest) error
}

var priorityEmoji = map[entities.TaskPriority]string{
	entities.TaskPriorityUrgent: "🚨",
	entities.TaskPriorityHigh:   "🔴",
	entities.TaskPriorityMedium: "🟡",
	entities.TaskPriorityLow:    "🟢",
}

var priorityColor = map[entities.TaskPriority]string{
	entities.TaskPriorityUrgent: "#b00020",
	entities.TaskPriorityHigh:   "#ff4444",
	entities.TaskPriorityMedium: "#ff8800",
	entities.TaskPriorityLow:    "#44aa44",
}

func emojiFor(p entities.TaskPriority) string {
	if e, ok := priorityEmoji[p]; ok {
		return e
	}
	return "⚪"
}

func colorFor(p entities.TaskPriority) string {
	if c, ok := priorityColor[p]; ok {
		return c
	}
	return "#888888"
}
