package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
)

// schema mirrors migrations/ in SQLite types
var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		slack_user_id TEXT,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		notification_preferences TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE meetings (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		file_ref TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		content_type TEXT,
		duration INTEGER,
		status TEXT NOT NULL DEFAULT 'uploaded',
		transcription TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		key_points TEXT,
		processing_error TEXT,
		owner_id TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		processed_at DATETIME,
		notifications_queued_at DATETIME
	)`,
	`CREATE TABLE meeting_participants (
		meeting_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (meeting_id, user_id)
	)`,
	`CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		context TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		status TEXT NOT NULL DEFAULT 'pending',
		due_date DATE,
		meeting_id TEXT NOT NULL,
		assignee_id TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		completed_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func seedProcessingMeeting(t *testing.T, repo repositories.MeetingRepository) *entities.Meeting {
	t.Helper()
	m := entities.NewMeeting(uuid.New(), "Weekly sync", "meetings/sync.mp3", "sync.mp3", 1024)
	m.Status = entities.MeetingStatusProcessing
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed meeting: %v", err)
	}
	return m
}

func runResults() repositories.RunResults {
	return repositories.RunResults{
		Transcription: "Alice: I'll send the report by Friday.",
		Summary:       "Report is due Friday.",
		KeyPoints:     datatypes.JSON(`{"key_points":["report due friday"]}`),
		ProcessedAt:   time.Now().UTC(),
	}
}

func countTasks(t *testing.T, db *gorm.DB, meetingID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&entities.Task{}).Where("meeting_id = ?", meetingID).Count(&n).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	return n
}

func TestCompleteRun_PersistsResultsAndTasks(t *testing.T) {
	db := newTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()
	m := seedProcessingMeeting(t, repo)

	tasks := []*entities.Task{
		entities.NewTask(m.ID, "Send the report"),
		entities.NewTask(m.ID, "Book the room"),
	}
	if err := repo.CompleteRun(ctx, m.ID, runResults(), tasks); err != nil {
		t.Fatalf("complete run: %v", err)
	}

	got, err := repo.FindByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != entities.MeetingStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.Transcription == "" || got.Summary == "" || got.ProcessedAt == nil {
		t.Fatalf("run results not saved: %+v", got)
	}
	if !got.NotificationsPending() {
		t.Fatal("notifications should be pending until the job is queued")
	}
	if n := countTasks(t, db, m.ID); n != 2 {
		t.Fatalf("expected 2 tasks, got %d", n)
	}
}

// A failed task insert must leave no trace of the run: the meeting stays in
// processing with no transcript and no partial task set.
func TestCompleteRun_TaskInsertFailureRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()
	m := seedProcessingMeeting(t, repo)

	first := entities.NewTask(m.ID, "Send the report")
	duplicate := entities.NewTask(m.ID, "Send the report again")
	duplicate.ID = first.ID

	err := repo.CompleteRun(ctx, m.ID, runResults(), []*entities.Task{first, duplicate})
	if err == nil {
		t.Fatal("expected duplicate task id to fail the run")
	}

	got, err := repo.FindByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != entities.MeetingStatusProcessing {
		t.Fatalf("expected meeting still processing, got %s", got.Status)
	}
	if got.Transcription != "" {
		t.Fatalf("transcription leaked from rolled back run: %q", got.Transcription)
	}
	if got.ProcessedAt != nil {
		t.Fatal("processed_at leaked from rolled back run")
	}
	if n := countTasks(t, db, m.ID); n != 0 {
		t.Fatalf("expected no tasks after rollback, got %d", n)
	}
}

func TestCompleteRun_RejectsMeetingNotProcessing(t *testing.T) {
	db := newTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()
	m := seedProcessingMeeting(t, repo)

	if err := repo.TransitionStatus(ctx, m.ID, entities.MeetingStatusProcessing, entities.MeetingStatusFailed); err != nil {
		t.Fatalf("transition: %v", err)
	}

	err := repo.CompleteRun(ctx, m.ID, runResults(), []*entities.Task{entities.NewTask(m.ID, "Late task")})
	if !errors.Is(err, entities.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if n := countTasks(t, db, m.ID); n != 0 {
		t.Fatalf("expected no tasks, got %d", n)
	}
}

func TestMarkNotificationsQueued(t *testing.T) {
	db := newTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()
	m := seedProcessingMeeting(t, repo)

	// Not completed yet
	if err := repo.MarkNotificationsQueued(ctx, m.ID); !errors.Is(err, entities.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}

	if err := repo.CompleteRun(ctx, m.ID, runResults(), nil); err != nil {
		t.Fatalf("complete run: %v", err)
	}
	if err := repo.MarkNotificationsQueued(ctx, m.ID); err != nil {
		t.Fatalf("mark queued: %v", err)
	}

	got, err := repo.FindByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.NotificationsPending() || got.NotificationsQueuedAt == nil {
		t.Fatalf("expected notifications_queued_at to be set, got %v", got.NotificationsQueuedAt)
	}
}
