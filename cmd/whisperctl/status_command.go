package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/validator"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showTasks bool

	cmd := &cobra.Command{
		Use:   "status <meeting-id>",
		Short: "Show a meeting's processing status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := parseMeetingID(args[0])
			if err != nil {
				return err
			}
			app, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			defer ctx.close()

			meeting, err := app.MeetingRepo.FindByID(cmd.Context(), meetingID)
			if err != nil {
				return err
			}
			job := app.Progress.Get(cmd.Context(), meeting)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, statusRows(meeting, job), nil))

			if !showTasks {
				return nil
			}
			tasks, err := app.TaskRepo.ListByMeeting(cmd.Context(), meetingID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Priority", "Status", "Due", "Assignee"},
				taskRows(tasks),
				nil,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTasks, "tasks", false, "Also list the meeting's tasks")

	return cmd
}

func statusRows(meeting *entities.Meeting, job entities.JobStatus) [][]string {
	rows := [][]string{
		{"Meeting", meeting.ID.String()},
		{"Title", meeting.Title},
		{"Status", string(meeting.Status)},
		{"Progress", strconv.Itoa(job.Progress) + "%"},
		{"Label", job.StatusLabel},
	}
	if job.Error != "" {
		rows = append(rows, []string{"Error", job.Error})
	}
	if !job.UpdatedAt.IsZero() {
		rows = append(rows, []string{"Updated", job.UpdatedAt.Format(time.RFC3339)})
	}
	if meeting.ProcessedAt != nil {
		rows = append(rows, []string{"Processed", meeting.ProcessedAt.Format(time.RFC3339)})
	}
	if meeting.NotificationsPending() {
		rows = append(rows, []string{"Notifications", "pending (run `whisperctl dispatch`)"})
	} else if meeting.NotificationsQueuedAt != nil {
		rows = append(rows, []string{"Notifications", "queued " + meeting.NotificationsQueuedAt.Format(time.RFC3339)})
	}
	return rows
}

func taskRows(tasks []*entities.Task) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format(validator.DateLayout)
		}
		assignee := "-"
		switch {
		case t.Assignee != nil:
			assignee = t.Assignee.Handle()
		case t.AssigneeID != nil:
			assignee = t.AssigneeID.String()
		}
		rows = append(rows, []string{t.Title, string(t.Priority), string(t.Status), due, assignee})
	}
	return rows
}
