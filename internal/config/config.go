package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Weights struct {
	ShoutoutSent     int
	ReactionReceived int
	CommentReceived  int
	ReactionGiven    int
}

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	RedisURL    string

	JWTSecret string
	JWTTTL    time.Duration

	FrontendURL         string
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	GoogleAllowedDomain string

	AdminEmail    string
	AdminPassword string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryUploadFolder string

	FeedTimezone     *time.Location
	CommentMaxLength int
	Weights          Weights

	RateLimitGlobal  time.Duration
	RateLimitPost    time.Duration
	RateLimitComment time.Duration

	NotificationRetention   time.Duration
	NotificationCleanupCron string
	JobTimeout              time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "bragboard"),
		DBPort:      getEnv("DB_PORT", "5432"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   os.Getenv("GOOGLE_REDIRECT_URL"),
		GoogleAllowedDomain: os.Getenv("GOOGLE_ALLOWED_DOMAIN"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "bragboard"),

		NotificationCleanupCron: getEnv("NOTIFICATION_CLEANUP_CRON", "0 3 * * *"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.GoogleClientID != "" && (cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "") {
		return nil, fmt.Errorf("GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URL are required with GOOGLE_CLIENT_ID")
	}

	var err error
	ttl, err := getInt("JWT_TTL_MINUTES", 60*24)
	if err != nil {
		return nil, err
	}
	cfg.JWTTTL = time.Duration(ttl) * time.Minute

	cfg.FeedTimezone, err = time.LoadLocation(getEnv("FEED_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TIMEZONE: %w", err)
	}

	cfg.CommentMaxLength, err = getInt("COMMENT_MAX_LENGTH", 3000)
	if err != nil {
		return nil, err
	}
	if cfg.CommentMaxLength <= 0 {
		return nil, fmt.Errorf("invalid COMMENT_MAX_LENGTH: must be positive")
	}

	cfg.Weights, err = loadWeights()
	if err != nil {
		return nil, err
	}

	cfg.RateLimitGlobal, err = time.ParseDuration(getEnv("RATE_LIMIT_GLOBAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GLOBAL: %w", err)
	}
	cfg.RateLimitPost, err = time.ParseDuration(getEnv("RATE_LIMIT_POST", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_POST: %w", err)
	}
	cfg.RateLimitComment, err = time.ParseDuration(getEnv("RATE_LIMIT_COMMENT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_COMMENT: %w", err)
	}

	cfg.NotificationRetention, err = time.ParseDuration(getEnv("NOTIFICATION_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION: %w", err)
	}
	if cfg.NotificationRetention <= 0 {
		return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION: must be positive")
	}
	cfg.JobTimeout, err = time.ParseDuration(getEnv("JOB_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func loadWeights() (Weights, error) {
	var w Weights
	fields := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"WEIGHT_SHOUTOUT_SENT", 5, &w.ShoutoutSent},
		{"WEIGHT_REACTION_RECEIVED", 2, &w.ReactionReceived},
		{"WEIGHT_COMMENT_RECEIVED", 2, &w.CommentReceived},
		{"WEIGHT_REACTION_GIVEN", 1, &w.ReactionGiven},
	}
	for _, f := range fields {
		v, err := getInt(f.key, f.fallback)
		if err != nil {
			return Weights{}, err
		}
		if v < 0 {
			return Weights{}, fmt.Errorf("invalid %s: weights must not be negative", f.key)
		}
		*f.dst = v
	}
	return w, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
