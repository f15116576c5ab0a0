package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Storage      StorageConfig
	AI           AIConfig
	Queue        QueueConfig
	Notification NotificationConfig
	Upload       UploadConfig
	Progress     ProgressConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxConns      int
	MinConns      int
	AutoMigrate   bool
	MigrationsDir string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// AIConfig holds the credentials and limits injected into the stage adapters
type AIConfig struct {
	// Transcriber selects the transcription backend: "assemblyai" or "whisper"
	Transcriber     string
	AssemblyAPIKey  string
	AssemblyBaseURL string
	LanguageCode    string

	// OpenAI-compatible endpoint used for summarization, extraction and Whisper
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModel     string
	WhisperModel string

	StageTimeout     time.Duration
	RetryMaxElapsed  time.Duration
	RetryInitialWait time.Duration
}

// QueueConfig holds job queue configuration
type QueueConfig struct {
	Backend     string // "memory", "redis" or "nats"
	Name        string
	NATSURL     string
	Stream      string
	Workers     int
	MaxDeliver  int
	AckWait     time.Duration
	JobTimeout  time.Duration
	PollTimeout time.Duration
}

// NotificationConfig holds SMTP and Slack settings
type NotificationConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string
	SlackToken   string
	SlackBaseURL string
	AppBaseURL   string
	SendTimeout  time.Duration
}

// UploadConfig holds recording upload limits
type UploadConfig struct {
	MaxBytes          int64
	AllowedExtensions []string
}

// ProgressConfig holds progress tracker settings
type ProgressConfig struct {
	TTL          time.Duration
	WriteTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			Name:          getEnv("DB_NAME", "meeting_whisperer"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:      getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate:   getEnvAsBool("DB_AUTO_MIGRATE", false),
			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "your-access-secret-change-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
			Issuer:       getEnv("JWT_ISSUER", "meeting-whisperer"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-recordings"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		AI: AIConfig{
			Transcriber:      getEnv("AI_TRANSCRIBER", "assemblyai"),
			AssemblyAPIKey:   getEnv("ASSEMBLYAI_API_KEY", ""),
			AssemblyBaseURL:  getEnv("ASSEMBLYAI_BASE_URL", ""),
			LanguageCode:     getEnv("AI_LANGUAGE_CODE", "en"),
			LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			LLMAPIKey:        getEnv("LLM_API_KEY", ""),
			LLMModel:         getEnv("LLM_MODEL", "llama-3.1-70b-versatile"),
			WhisperModel:     getEnv("WHISPER_MODEL", "whisper-1"),
			StageTimeout:     getEnvAsDuration("AI_STAGE_TIMEOUT", "8m"),
			RetryMaxElapsed:  getEnvAsDuration("AI_RETRY_MAX_ELAPSED", "1m"),
			RetryInitialWait: getEnvAsDuration("AI_RETRY_INITIAL_WAIT", "2s"),
		},
		Queue: QueueConfig{
			Backend:     getEnv("QUEUE_BACKEND", "redis"),
			Name:        getEnv("QUEUE_NAME", "meeting-jobs"),
			NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Stream:      getEnv("NATS_STREAM", "MEETING_JOBS"),
			Workers:     getEnvAsInt("QUEUE_WORKERS", 2),
			MaxDeliver:  getEnvAsInt("QUEUE_MAX_DELIVER", 3),
			AckWait:     getEnvAsDuration("QUEUE_ACK_WAIT", "35m"),
			JobTimeout:  getEnvAsDuration("QUEUE_JOB_TIMEOUT", "30m"),
			PollTimeout: getEnvAsDuration("QUEUE_POLL_TIMEOUT", "5s"),
		},
		Notification: NotificationConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("EMAIL_FROM", "noreply@meeting-whisperer.local"),
			FromName:     getEnv("EMAIL_FROM_NAME", "Meeting Whisperer"),
			SlackToken:   getEnv("SLACK_BOT_TOKEN", ""),
			SlackBaseURL: getEnv("SLACK_API_URL", "https://slack.com/api"),
			AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:3000"),
			SendTimeout:  getEnvAsDuration("NOTIFY_SEND_TIMEOUT", "15s"),
		},
		Upload: UploadConfig{
			MaxBytes:          int64(getEnvAsInt("UPLOAD_MAX_BYTES", 100*1024*1024)),
			AllowedExtensions: getEnvAsList("UPLOAD_ALLOWED_EXTENSIONS", ".mp3,.mp4,.wav,.m4a,.ogg,.webm"),
		},
		Progress: ProgressConfig{
			TTL:          getEnvAsDuration("PROGRESS_TTL", "24h"),
			WriteTimeout: getEnvAsDuration("PROGRESS_WRITE_TIMEOUT", "2s"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.AI.Transcriber {
	case "assemblyai", "whisper":
	default:
		return fmt.Errorf("AI_TRANSCRIBER must be assemblyai or whisper, got %q", c.AI.Transcriber)
	}
	switch c.Queue.Backend {
	case "memory", "redis", "nats":
	default:
		return fmt.Errorf("QUEUE_BACKEND must be memory, redis or nats, got %q", c.Queue.Backend)
	}
	if c.Queue.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("QUEUE_BACKEND=redis requires REDIS_ENABLED=true")
	}
	if c.Queue.Workers < 1 {
		return fmt.Errorf("QUEUE_WORKERS must be at least 1")
	}
	if c.AI.StageTimeout <= 0 {
		return fmt.Errorf("AI_STAGE_TIMEOUT must be positive")
	}
	// A job runs up to three AI stages back to back
	if c.Queue.JobTimeout < 3*c.AI.StageTimeout {
		return fmt.Errorf("QUEUE_JOB_TIMEOUT (%s) must be at least 3 x AI_STAGE_TIMEOUT (%s)", c.Queue.JobTimeout, c.AI.StageTimeout)
	}
	// Redelivery must not start while the first attempt can still be running
	if c.Queue.AckWait <= c.Queue.JobTimeout {
		return fmt.Errorf("QUEUE_ACK_WAIT (%s) must be greater than QUEUE_JOB_TIMEOUT (%s)", c.Queue.AckWait, c.Queue.JobTimeout)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Server.Environment == "production" && strings.HasPrefix(c.JWT.AccessSecret, "your-") {
		return fmt.Errorf("JWT_ACCESS_SECRET must be set in production")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// SMTPEnabled reports whether an SMTP relay is configured
func (c NotificationConfig) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// SlackEnabled reports whether a Slack bot token is configured
func (c NotificationConfig) SlackEnabled() bool {
	return c.SlackToken != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	parts := strings.Split(getEnv(key, defaultValue), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
