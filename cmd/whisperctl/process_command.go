package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <meeting-id>",
		Short: "Run the processing pipeline for a meeting synchronously",
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

			outcome, err := app.Orchestrator.Process(cmd.Context(), meetingID)
			if err != nil {
				return fmt.Errorf("processing failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Meeting", "Tasks", "Assigned", "Notifications queued"},
				[][]string{{
					outcome.MeetingID.String(),
					strconv.Itoa(outcome.TaskCount),
					strconv.Itoa(outcome.AssignedCount),
					strconv.FormatBool(outcome.Notified),
				}},
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newDispatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <meeting-id>",
		Short: "Send task digests for a processed meeting",
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

			sent := app.Dispatcher.Dispatch(cmd.Context(), meetingID)
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d digest(s)\n", sent)
			return nil
		},
	}
}
