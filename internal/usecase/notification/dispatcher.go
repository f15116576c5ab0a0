package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
)

// Sender delivers a digest to one recipient over a single channel
type Sender interface {
	Send(ctx context.Context, user *entities.User, digest entities.Digest) error
}

// Dispatcher sends each assignee of a meeting one digest of their tasks
type Dispatcher struct {
	meetings    repositories.MeetingRepository
	tasks       repositories.TaskRepository
	users       repositories.UserRepository
	sender      Sender
	appBaseURL  string
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(
	meetings repositories.MeetingRepository,
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	sender Sender,
	appBaseURL string,
	sendTimeout time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		meetings:    meetings,
		tasks:       tasks,
		users:       users,
		sender:      sender,
		appBaseURL:  strings.TrimRight(appBaseURL, "/"),
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Dispatch notifies every assignee of meetingID and returns how many
// recipients were sent their digest. Unassigned tasks are skipped. A failure
// for one recipient is logged and does not affect the others.
func (d *Dispatcher) Dispatch(ctx context.Context, meetingID uuid.UUID) int {
	meeting, err := d.meetings.FindByID(ctx, meetingID)
	if err != nil {
		d.logError("load meeting", meetingID, err)
		return 0
	}

	tasks, err := d.tasks.ListByMeeting(ctx, meetingID)
	if err != nil {
		d.logError("load tasks", meetingID, err)
		return 0
	}

	order, groups := groupByAssignee(tasks)
	if len(order) == 0 {
		if d.logger != nil {
			d.logger.Info("📭 No assigned tasks to notify", zap.String("meeting_id", meetingID.String()))
		}
		return 0
	}

	recipients, err := d.users.FindByIDs(ctx, order)
	if err != nil {
		d.logError("load recipients", meetingID, err)
		return 0
	}
	byID := make(map[uuid.UUID]*entities.User, len(recipients))
	for _, u := range recipients {
		byID[u.ID] = u
	}

	sent, failed := 0, 0
	for _, userID := range order {
		user, ok := byID[userID]
		if !ok || !user.IsActive {
			failed++
			if d.logger != nil {
				d.logger.Warn("⚠️ Skipping unknown or inactive recipient",
					zap.String("meeting_id", meetingID.String()),
					zap.String("user_id", userID.String()),
				)
			}
			continue
		}

		if err := d.sendOne(ctx, user, d.digest(meeting, groups[userID])); err != nil {
			failed++
			if d.logger != nil {
				d.logger.Error("❌ Failed to notify recipient",
					zap.String("meeting_id", meetingID.String()),
					zap.String("user_id", userID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		sent++
	}

	if d.logger != nil {
		d.logger.Info("📬 Notifications dispatched",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("sent", sent),
			zap.Int("failed", failed),
		)
	}
	return sent
}

// sendOne isolates a single delivery, including panics from a channel
func (d *Dispatcher) sendOne(ctx context.Context, user *entities.User, digest entities.Digest) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while sending: %v", p)
		}
	}()

	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}
	return d.sender.Send(ctx, user, digest)
}

func (d *Dispatcher) digest(meeting *entities.Meeting, tasks []*entities.Task) entities.Digest {
	items := make([]entities.DigestItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, entities.DigestItem{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
		})
	}

	digest := entities.Digest{
		MeetingID:    meeting.ID.String(),
		MeetingTitle: meeting.Title,
		Items:        items,
	}
	if d.appBaseURL != "" {
		digest.MeetingURL = fmt.Sprintf("%s/meetings/%s", d.appBaseURL, meeting.ID)
	}
	return digest
}

// groupByAssignee groups assigned tasks by user, keeping first-seen order
func groupByAssignee(tasks []*entities.Task) ([]uuid.UUID, map[uuid.UUID][]*entities.Task) {
	var order []uuid.UUID
	groups := make(map[uuid.UUID][]*entities.Task)
	for _, t := range tasks {
		if t.AssigneeID == nil {
			continue
		}
		id := *t.AssigneeID
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], t)
	}
	return order, groups
}

func (d *Dispatcher) logError(op string, meetingID uuid.UUID, err error) {
	if d.logger != nil {
		d.logger.Error("❌ Notification dispatch aborted",
			zap.String("op", op),
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
}
