package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

// LogChannel writes digests to the logger. Used when no transport is configured.
type LogChannel struct {
	logger *zap.Logger
}

func NewLogChannel(logger *zap.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (c *LogChannel) Name() string { return "log" }

func (c *LogChannel) Send(_ context.Context, user *entities.User, digest entities.Digest) error {
	if c.logger == nil {
		return nil
	}
	titles := make([]string, 0, len(digest.Items))
	for _, item := range digest.Items {
		titles = append(titles, item.Title)
	}
	c.logger.Info("📨 Task digest",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("meeting_id", digest.MeetingID),
		zap.Strings("tasks", titles),
	)
	return nil
}
