package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

// Router sends each digest through exactly one channel chosen from the
// recipient's preferences and the configured transports
type Router struct {
	slack Channel
	email Channel
	log   Channel
}

// NewRouter builds a router with the transports enabled in cfg
func NewRouter(cfg *config.NotificationConfig, logger *zap.Logger) (*Router, error) {
	r := &Router{log: NewLogChannel(logger)}
	if cfg.SlackEnabled() {
		r.slack = NewSlackChannel(cfg, logger)
	}
	if cfg.SMTPEnabled() {
		email, err := NewEmailChannel(cfg, logger)
		if err != nil {
			return nil, err
		}
		r.email = email
	}
	return r, nil
}

// Select returns the channel used for user. A user who opted out of email
// and cannot be reached on Slack only gets the log channel.
func (r *Router) Select(user *entities.User) Channel {
	prefs := user.Preferences()
	if prefs.Slack && r.slack != nil && user.SlackUserID != nil && *user.SlackUserID != "" {
		return r.slack
	}
	if prefs.Email && r.email != nil && user.Email != "" {
		return r.email
	}
	return r.log
}

// Send delivers digest through the selected channel
func (r *Router) Send(ctx context.Context, user *entities.User, digest entities.Digest) error {
	return r.Select(user).Send(ctx, user, digest)
}
