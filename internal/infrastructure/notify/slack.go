package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

// SlackChannel posts digests as direct messages through chat.postMessage
type SlackChannel struct {
	api    *slack.Client
	logger *zap.Logger
}

// NewSlackChannel creates a Slack channel from notification settings
func NewSlackChannel(cfg *config.NotificationConfig, logger *zap.Logger) *SlackChannel {
	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if cfg.SlackBaseURL != "" {
		// slack-go joins method names straight onto the endpoint
		opts = append(opts, slack.OptionAPIURL(strings.TrimRight(cfg.SlackBaseURL, "/")+"/"))
	}
	return &SlackChannel{
		api:    slack.New(cfg.SlackToken, opts...),
		logger: logger,
	}
}

// Name returns the channel name
func (c *SlackChannel) Name() string { return "slack" }

// Send posts the digest to the user's Slack member ID
func (c *SlackChannel) Send(ctx context.Context, user *entities.User, digest entities.Digest) error {
	if user.SlackUserID == nil || *user.SlackUserID == "" {
		return ErrNoAddress
	}

	_, _, err := c.api.PostMessageContext(ctx, *user.SlackUserID,
		slack.MsgOptionText("Action items from "+digest.MeetingTitle, false),
		slack.MsgOptionBlocks(digestBlocks(digest)...),
	)
	if err != nil {
		return fmt.Errorf("slack post to %s failed: %w", *user.SlackUserID, err)
	}

	if c.logger != nil {
		c.logger.Info("💬 Digest posted to Slack",
			zap.String("user_id", user.ID.String()),
			zap.Int("items", len(digest.Items)),
		)
	}
	return nil
}

func digestBlocks(digest entities.Digest) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "📋 Action Items from "+digest.MeetingTitle, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "Hi! Here are your action items from the recent meeting:", false, false), nil, nil),
		slack.NewDividerBlock(),
	}

	for _, item := range digest.Items {
		due := "No due date"
		if item.DueDate != nil {
			due = item.DueDate.Format("01/02/2006")
		}
		text := fmt.Sprintf("%s *%s*\n", emojiFor(item.Priority), item.Title)
		if item.Description != "" {
			text += item.Description + "\n"
		}
		text += fmt.Sprintf("_Due: %s_", due)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil))
	}

	if digest.MeetingURL != "" {
		button := slack.NewButtonBlockElement("open_meeting", digest.MeetingID,
			slack.NewTextBlockObject(slack.PlainTextType, "Open Meeting", false, false)).
			WithURL(digest.MeetingURL)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "💡 View full meeting details in Meeting Whisperer", false, false),
			nil,
			slack.NewAccessory(button),
		))
	}

	return blocks
}
