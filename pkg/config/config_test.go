package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "memory")
	t.Setenv("AI_TRANSCRIBER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.AI.Transcriber != "assemblyai" {
		t.Fatalf("expected assemblyai transcriber, got %s", cfg.AI.Transcriber)
	}
	if cfg.Upload.MaxBytes != 100*1024*1024 {
		t.Fatalf("unexpected max upload %d", cfg.Upload.MaxBytes)
	}
	if len(cfg.Upload.AllowedExtensions) != 6 {
		t.Fatalf("expected 6 allowed extensions, got %v", cfg.Upload.AllowedExtensions)
	}
	if cfg.AI.StageTimeout != 8*time.Minute {
		t.Fatalf("unexpected stage timeout %s", cfg.AI.StageTimeout)
	}
	if cfg.Queue.JobTimeout < 3*cfg.AI.StageTimeout || cfg.Queue.AckWait <= cfg.Queue.JobTimeout {
		t.Fatalf("default timeouts are inconsistent: stage=%s job=%s ack=%s",
			cfg.AI.StageTimeout, cfg.Queue.JobTimeout, cfg.Queue.AckWait)
	}
}

func TestLoad_RejectsStageTimeoutAboveJobBudget(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "memory")
	t.Setenv("AI_STAGE_TIMEOUT", "15m")
	t.Setenv("QUEUE_JOB_TIMEOUT", "30m")

	if _, err := Load(); err == nil {
		t.Fatal("expected three 15m stages not to fit a 30m job")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "nats")
	t.Setenv("QUEUE_WORKERS", "8")
	t.Setenv("AI_STAGE_TIMEOUT", "90s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Queue.Backend != "nats" || cfg.Queue.Workers != 8 {
		t.Fatalf("queue overrides not applied: %+v", cfg.Queue)
	}
	if cfg.AI.StageTimeout != 90*time.Second {
		t.Fatalf("unexpected stage timeout %s", cfg.AI.StageTimeout)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown transcriber", func(c *Config) { c.AI.Transcriber = "vosk" }, true},
		{"unknown queue", func(c *Config) { c.Queue.Backend = "kafka" }, true},
		{"redis queue without redis", func(c *Config) { c.Queue.Backend = "redis"; c.Redis.Enabled = false }, true},
		{"no workers", func(c *Config) { c.Queue.Workers = 0 }, true},
		{"ack wait equals job timeout", func(c *Config) { c.Queue.AckWait = c.Queue.JobTimeout }, true},
		{"ack wait below job timeout", func(c *Config) { c.Queue.AckWait = time.Minute }, true},
		{"job timeout below three stages", func(c *Config) { c.Queue.JobTimeout = 2 * time.Minute }, true},
		{"job timeout exactly three stages", func(c *Config) { c.Queue.JobTimeout = 3 * time.Minute }, false},
		{"production default secret", func(c *Config) {
			c.Server.Environment = "production"
			c.JWT.AccessSecret = "your-access-secret-change-in-production"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				AI:     AIConfig{Transcriber: "whisper", StageTimeout: time.Minute},
				Queue:  QueueConfig{Backend: "memory", Workers: 1, JobTimeout: 5 * time.Minute, AckWait: 6 * time.Minute},
				Upload: UploadConfig{MaxBytes: 1},
				JWT:    JWTConfig{AccessSecret: "s3cret"},
			}
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
