package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"process"},
		{"dispatch"},
		{"status"},
		{"worker"},
		{"token"},
		{"seed-users"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
}

func TestProcessCommand_RejectsBadID(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"process", "not-a-uuid"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid meeting id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestSeedUsers(t *testing.T) {
	users := seedUsers()
	if len(users) != len(seedNames) {
		t.Fatalf("expected %d users, got %d", len(seedNames), len(users))
	}
	seen := map[string]bool{}
	for _, u := range users {
		if !strings.HasSuffix(u.Email, "@"+seedDomain) {
			t.Errorf("unexpected email %q", u.Email)
		}
		if seen[u.Email] {
			t.Errorf("duplicate email %q", u.Email)
		}
		seen[u.Email] = true
		if err := u.Validate(); err != nil {
			t.Errorf("seed user %q invalid: %v", u.Email, err)
		}
	}
}

func TestStatusRows(t *testing.T) {
	m := entities.NewMeeting(uuid.New(), "Sync", "r", "a.mp3", 1)
	m.Status = entities.MeetingStatusFailed
	rows := statusRows(m, entities.JobStatus{Progress: 0, StatusLabel: "Processing failed", Error: "boom", UpdatedAt: time.Now()})

	found := map[string]string{}
	for _, r := range rows {
		found[r[0]] = r[1]
	}
	if found["Status"] != "failed" || found["Error"] != "boom" || found["Progress"] != "0%" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if _, ok := found["Notifications"]; ok {
		t.Fatal("failed meeting has no pending notifications")
	}

	m.Status = entities.MeetingStatusCompleted
	found = map[string]string{}
	for _, r := range statusRows(m, entities.JobStatus{Progress: 100}) {
		found[r[0]] = r[1]
	}
	if !strings.HasPrefix(found["Notifications"], "pending") {
		t.Fatalf("completed meeting without a queued notification job should say so, got %v", found)
	}
}

func TestRenderTable(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task := entities.NewTask(uuid.New(), "Send report")
	task.DueDate = &due

	out := renderTable([]string{"Title", "Priority", "Status", "Due", "Assignee"}, taskRows([]*entities.Task{task}), nil)
	for _, want := range []string{"Send report", "medium", "pending", "2024-05-01"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
