package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Extractor ExtractorConfig
	Intake    IntakeConfig
	Pipeline  PipelineConfig
	Session   SessionConfig
	S3        S3Config
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// ExtractorConfig holds settings for the remote booth extraction service.
type ExtractorConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	Strategy    string `mapstructure:"strategy"`
	HighRes     bool   `mapstructure:"high_res"`
}

// IntakeConfig holds client-side file validation settings.
type IntakeConfig struct {
	MaxFileSizeBytes int64  `mapstructure:"max_file_size_bytes"`
	AcceptedType     string `mapstructure:"accepted_type"`
	SniffContent     bool   `mapstructure:"sniff_content"`
}

// PipelineConfig holds submission lifecycle settings.
type PipelineConfig struct {
	TimeoutSecs    int `mapstructure:"timeout_secs"`
	ResetAfterSecs int `mapstructure:"reset_after_secs"`
}

// Timeout returns the overall deadline of one submission.
func (p *PipelineConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// ResetAfter returns how long a finished submission stays visible before re-arming.
func (p *PipelineConfig) ResetAfter() time.Duration {
	return time.Duration(p.ResetAfterSecs) * time.Second
}

// SessionConfig holds in-memory session store settings.
type SessionConfig struct {
	MaxSessions     int           `mapstructure:"max_sessions"`
	MaxAge          time.Duration `mapstructure:"max_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// S3Config holds AWS S3 settings for the optional submission archive.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ArchiveEnabled bool   `mapstructure:"archive_enabled"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the BOOTHSCAN_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config.Load: ignoring .env file: %v", err)
	}

	v := viper.New()
	v.SetEnvPrefix("BOOTHSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// Extractor defaults
	v.SetDefault("extractor.endpoint", "http://localhost:8000/extract")
	v.SetDefault("extractor.timeout_secs", 300)
	v.SetDefault("extractor.strategy", "adaptive")
	v.SetDefault("extractor.high_res", true)

	// Intake defaults
	v.SetDefault("intake.max_file_size_bytes", 10485760)
	v.SetDefault("intake.accepted_type", "application/pdf")
	v.SetDefault("intake.sniff_content", true)

	// Pipeline defaults
	v.SetDefault("pipeline.timeout_secs", 600)
	v.SetDefault("pipeline.reset_after_secs", 0)

	// Session defaults
	v.SetDefault("session.max_sessions", 100)
	v.SetDefault("session.max_age", "30m")
	v.SetDefault("session.cleanup_interval", "1m")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "boothscan-archive")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.archive_enabled", false)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "BOOTHSCAN_SERVER_PORT",
		"server.read_timeout":        "BOOTHSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "BOOTHSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":         "BOOTHSCAN_SERVER_ENVIRONMENT",
		"extractor.endpoint":         "BOOTHSCAN_EXTRACTOR_ENDPOINT",
		"extractor.timeout_secs":     "BOOTHSCAN_EXTRACTOR_TIMEOUT_SECS",
		"extractor.strategy":         "BOOTHSCAN_EXTRACTOR_STRATEGY",
		"extractor.high_res":         "BOOTHSCAN_EXTRACTOR_HIGH_RES",
		"intake.max_file_size_bytes": "BOOTHSCAN_INTAKE_MAX_FILE_SIZE_BYTES",
		"intake.accepted_type":       "BOOTHSCAN_INTAKE_ACCEPTED_TYPE",
		"intake.sniff_content":       "BOOTHSCAN_INTAKE_SNIFF_CONTENT",
		"pipeline.timeout_secs":      "BOOTHSCAN_PIPELINE_TIMEOUT_SECS",
		"pipeline.reset_after_secs":  "BOOTHSCAN_PIPELINE_RESET_AFTER_SECS",
		"session.max_sessions":       "BOOTHSCAN_SESSION_MAX_SESSIONS",
		"session.max_age":            "BOOTHSCAN_SESSION_MAX_AGE",
		"session.cleanup_interval":   "BOOTHSCAN_SESSION_CLEANUP_INTERVAL",
		"s3.region":                  "BOOTHSCAN_S3_REGION",
		"s3.bucket":                  "BOOTHSCAN_S3_BUCKET",
		"s3.endpoint":                "BOOTHSCAN_S3_ENDPOINT",
		"s3.access_key":              "BOOTHSCAN_S3_ACCESS_KEY",
		"s3.secret_key":              "BOOTHSCAN_S3_SECRET_KEY",
		"s3.archive_enabled":         "BOOTHSCAN_S3_ARCHIVE_ENABLED",
		"cors.allowed_origins":       "BOOTHSCAN_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BOOTHSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BOOTHSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Extractor = ExtractorConfig{
		Endpoint:    v.GetString("extractor.endpoint"),
		TimeoutSecs: v.GetInt("extractor.timeout_secs"),
		Strategy:    v.GetString("extractor.strategy"),
		HighRes:     v.GetBool("extractor.high_res"),
	}
	cfg.Intake = IntakeConfig{
		MaxFileSizeBytes: v.GetInt64("intake.max_file_size_bytes"),
		AcceptedType:     v.GetString("intake.accepted_type"),
		SniffContent:     v.GetBool("intake.sniff_content"),
	}
	cfg.Pipeline = PipelineConfig{
		TimeoutSecs:    v.GetInt("pipeline.timeout_secs"),
		ResetAfterSecs: v.GetInt("pipeline.reset_after_secs"),
	}
	cfg.Session = SessionConfig{
		MaxSessions:     v.GetInt("session.max_sessions"),
		MaxAge:          v.GetDuration("session.max_age"),
		CleanupInterval: v.GetDuration("session.cleanup_interval"),
	}
	cfg.S3 = S3Config{
		Region:         v.GetString("s3.region"),
		Bucket:         v.GetString("s3.bucket"),
		Endpoint:       v.GetString("s3.endpoint"),
		AccessKey:      v.GetString("s3.access_key"),
		SecretKey:      v.GetString("s3.secret_key"),
		ArchiveEnabled: v.GetBool("s3.archive_enabled"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
