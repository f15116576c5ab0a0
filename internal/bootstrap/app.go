package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-whisperer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/notify"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-whisperer/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-whisperer/internal/usecase/notification"
	"github.com/johnquangdev/meeting-whisperer/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-whisperer/internal/usecase/status"
	"github.com/johnquangdev/meeting-whisperer/internal/usecase/worker"
	pkgai "github.com/johnquangdev/meeting-whisperer/pkg/ai"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
	"github.com/johnquangdev/meeting-whisperer/pkg/jwt"
)

const (
	userDirectoryTTL    = time.Minute
	memoryQueueCapacity = 1024
	progressKeyPrefix   = "whisperer:"
)

// App holds every long-lived dependency shared by the API server and the CLI
type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB      *gorm.DB
	Redis   *redis.Client
	Storage *storage.MinIOClient
	Queue   queue.Queue

	MeetingRepo repositories.MeetingRepository
	TaskRepo    repositories.TaskRepository
	UserRepo    *repository.UserRepository

	Progress     *status.ProgressTracker
	Orchestrator *pipeline.Orchestrator
	Dispatcher   *notification.Dispatcher
	Pool         *worker.Pool

	Meetings *meeting.MeetingService
	Tasks    *meeting.TaskService
	JWT      *jwt.Manager

	closers []func() error
}

// NewLogger builds the zap logger for the configured environment
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// New connects to every backing service and wires the use cases.
// Call Close to release connections.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}
	if err := app.init(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	a.Logger.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, a.Logger)
	if err != nil {
		return err
	}
	a.DB = db
	a.closers = append(a.closers, func() error { return database.CloseDB(db) })

	if cfg.Redis.Enabled {
		a.Logger.Info("📦 Connecting to Redis...")
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		a.Redis = client
		a.closers = append(a.closers, client.Close)
	}

	a.Logger.Info("🗄️ Connecting to object storage...")
	store, err := storage.NewMinIOClient(ctx, &cfg.Storage)
	if err != nil {
		return err
	}
	a.Storage = store

	q, err := a.newQueue(ctx)
	if err != nil {
		return err
	}
	a.Queue = q
	a.closers = append(a.closers, q.Close)

	// Repositories
	a.MeetingRepo = repository.NewMeetingRepository(db)
	a.TaskRepo = repository.NewTaskRepository(db)
	a.UserRepo = repository.NewUserRepository(db)

	// Progress tracker
	var progressStore cache.Store
	if a.Redis != nil {
		progressStore = cache.NewRedisStore(a.Redis, progressKeyPrefix)
	} else {
		mem := cache.NewMemoryStore()
		a.closers = append(a.closers, func() error { mem.Close(); return nil })
		progressStore = mem
	}
	a.Progress = status.NewProgressTracker(progressStore, cfg.Progress.TTL, cfg.Progress.WriteTimeout, a.Logger)

	// Stage adapters
	a.Logger.Info("🤖 Initializing AI components...", zap.String("transcriber", cfg.AI.Transcriber))
	var transcriber pipeline.Transcriber
	switch cfg.AI.Transcriber {
	case "whisper":
		transcriber = pkgai.NewWhisperTranscriber(&cfg.AI, store, a.Logger)
	default:
		transcriber = pkgai.NewAssemblyAITranscriber(&cfg.AI, store, a.Logger)
	}

	a.Orchestrator = pipeline.NewOrchestrator(pipeline.Config{
		Meetings:     a.MeetingRepo,
		Users:        cache.NewUserDirectory(a.UserRepo, userDirectoryTTL),
		Transcriber:  transcriber,
		Summarizer:   pkgai.NewSummarizer(&cfg.AI, a.Logger),
		Extractor:    pkgai.NewTaskExtractor(&cfg.AI, a.Logger),
		Progress:     a.Progress,
		Jobs:         q,
		StageTimeout: cfg.AI.StageTimeout,
		Logger:       a.Logger,
	})

	router, err := notify.NewRouter(&cfg.Notification, a.Logger)
	if err != nil {
		return err
	}
	a.Dispatcher = notification.NewDispatcher(
		a.MeetingRepo,
		a.TaskRepo,
		a.UserRepo,
		router,
		cfg.Notification.AppBaseURL,
		cfg.Notification.SendTimeout,
		a.Logger,
	)

	a.Pool = worker.NewPool(q, cfg.Queue.JobTimeout, a.Logger)
	a.Pool.Handle(queue.JobTypeProcessMeeting, a.processJob)
	a.Pool.Handle(queue.JobTypeSendNotifications, a.notifyJob)

	a.Meetings = meeting.NewMeetingService(a.MeetingRepo, a.UserRepo, store, q, a.Progress, cfg.Upload, a.Logger)
	a.Tasks = meeting.NewTaskService(a.TaskRepo, a.MeetingRepo, a.UserRepo)
	a.JWT = jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)

	return nil
}

func (a *App) newQueue(ctx context.Context) (queue.Queue, error) {
	cfg := a.Config.Queue
	a.Logger.Info("📬 Initializing job queue", zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case "memory":
		return queue.NewMemoryQueue(memoryQueueCapacity, cfg.MaxDeliver, cfg.PollTimeout), nil
	case "redis":
		if a.Redis == nil {
			return nil, fmt.Errorf("redis queue requires REDIS_ENABLED=true")
		}
		return queue.NewRedisQueue(a.Redis, queue.RedisConfig{
			Name:        cfg.Name,
			MaxDeliver:  cfg.MaxDeliver,
			PollTimeout: cfg.PollTimeout,
			Lease:       cfg.AckWait,
		}), nil
	case "nats":
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("meeting-whisperer"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.closers = append(a.closers, func() error { nc.Close(); return nil })
		return queue.NewNATSQueue(ctx, nc, queue.NATSConfig{
			Stream:      cfg.Stream,
			Consumer:    cfg.Name + "-workers",
			Subject:     cfg.Name,
			MaxDeliver:  cfg.MaxDeliver,
			AckWait:     cfg.AckWait,
			PollTimeout: cfg.PollTimeout,
		})
	}
	return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
}

// RecoverInflight returns jobs whose worker died mid-run to the queue. Jobs
// still leased by a live worker are left alone. Only the Redis backend
// needs this; JetStream redelivers on its own after AckWait.
func (a *App) RecoverInflight(ctx context.Context) {
	rq, ok := a.Queue.(interface {
		RequeueExpired(ctx context.Context) (int, error)
	})
	if !ok {
		return
	}
	n, err := rq.RequeueExpired(ctx)
	if err != nil {
		a.Logger.Warn("⚠️ Failed to requeue in-flight jobs", zap.Error(err))
		return
	}
	if n > 0 {
		a.Logger.Info("♻️ Requeued in-flight jobs", zap.Int("count", n))
	}
}

func (a *App) processJob(ctx context.Context, job queue.Job) error {
	outcome, err := a.Orchestrator.Process(ctx, job.MeetingID)
	if err != nil {
		return err
	}
	a.Logger.Info("✅ Meeting processed",
		zap.String("meeting_id", outcome.MeetingID.String()),
		zap.Int("tasks", outcome.TaskCount),
		zap.Int("assigned", outcome.AssignedCount),
		zap.Bool("notified", outcome.Notified),
		zap.Bool("resumed", outcome.Resumed),
	)
	if !outcome.Notified {
		// Redelivery finds the meeting completed with notifications pending
		return fmt.Errorf("%w: notifications for meeting %s not queued", queue.ErrRedeliver, outcome.MeetingID)
	}
	return nil
}

func (a *App) notifyJob(ctx context.Context, job queue.Job) error {
	sent := a.Dispatcher.Dispatch(ctx, job.MeetingID)
	a.Logger.Info("📨 Notifications dispatched",
		zap.String("meeting_id", job.MeetingID.String()),
		zap.Int("sent", sent),
	)
	return nil
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.Logger != nil {
			a.Logger.Warn("⚠️ Close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
