package notify

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"color": colorFor,
	"title": func(p entities.TaskPriority) string {
		s := string(p)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"due": func(d *time.Time) string {
		if d == nil {
			return "No due date"
		}
		return d.Format("January 02, 2006")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Meeting Action Items - {{.Digest.MeetingTitle}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
    <h1 style="color: #2c3e50; margin: 0;">Meeting Action Items</h1>
    <p style="margin: 10px 0 0 0; color: #666;">From: {{.Digest.MeetingTitle}}</p>
  </div>
  <h2 style="color: #2c3e50;">Hi {{.Name}},</h2>
  <p>Here are your action items from the recent meeting:</p>
  <div style="background: #ffffff; border: 1px solid #e9ecef; border-radius: 8px; padding: 20px;">
    <h3 style="color: #2c3e50; margin-top: 0;">Your Tasks ({{len .Digest.Items}})</h3>
    {{range .Digest.Items}}
    <div style="border-left: 4px solid {{color .Priority}}; padding-left: 15px; margin: 15px 0;">
      <h3 style="margin: 0; color: #333;">{{.Title}}</h3>
      {{if .Description}}<p style="margin: 5px 0; color: #666;">{{.Description}}</p>{{end}}
      <p style="margin: 5px 0; font-size: 12px; color: #999;">Priority: {{title .Priority}} | Due: {{due .DueDate}}</p>
    </div>
    {{end}}
  </div>
  {{if .Digest.MeetingURL}}<p style="text-align: center; margin: 30px 0;"><a href="{{.Digest.MeetingURL}}">View Meeting Results</a></p>{{end}}
  <p style="margin-top: 30px; text-align: center; font-size: 12px; color: #999;">Sent by Meeting Whisperer</p>
</body>
</html>
`))

// mailSender is the part of *mail.Client the channel uses
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailChannel sends HTML digests through an SMTP relay
type EmailChannel struct {
	client   mailSender
	from     string
	fromName string
	logger   *zap.Logger
}

// NewEmailChannel creates an SMTP channel from notification settings
func NewEmailChannel(cfg *config.NotificationConfig, logger *zap.Logger) (*EmailChannel, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(dialWithDeadline),
	}
	if cfg.SendTimeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.SendTimeout))
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	from := cfg.FromEmail
	if from == "" {
		from = cfg.SMTPUser
	}
	return &EmailChannel{
		client:   client,
		from:     from,
		fromName: cfg.FromName,
		logger:   logger,
	}, nil
}

// dialWithDeadline carries the context deadline onto the connection so the
// whole SMTP session, not only the dial, ends when the context does
func dialWithDeadline(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// Name returns the channel name
func (c *EmailChannel) Name() string { return "email" }

// Send renders the digest and mails it to the user
func (c *EmailChannel) Send(ctx context.Context, user *entities.User, digest entities.Digest) error {
	if user.Email == "" {
		return ErrNoAddress
	}

	msg, err := c.message(user, digest)
	if err != nil {
		return err
	}

	if err := c.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", user.Email, err)
	}

	if c.logger != nil {
		c.logger.Info("📧 Digest emailed",
			zap.String("user_id", user.ID.String()),
			zap.Int("items", len(digest.Items)),
		)
	}
	return nil
}

func (c *EmailChannel) message(user *entities.User, digest entities.Digest) (*mail.Msg, error) {
	msg := mail.NewMsg()

	var err error
	if c.fromName != "" {
		err = msg.FromFormat(c.fromName, c.from)
	} else {
		err = msg.From(c.from)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(user.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("Action Items from " + digest.MeetingTitle)

	if err := msg.SetBodyHTMLTemplate(digestTemplate, struct {
		Name   string
		Digest entities.Digest
	}{Name: user.Name, Digest: digest}); err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}
	return msg, nil
}
