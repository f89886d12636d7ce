package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	// Embedded zone database so APP_TIMEZONE resolves on minimal images.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	DefaultTimezone       = "America/Lima"
	DefaultTransitionCron = "0 0 0 * * *"
)

// CronParser accepts six-field expressions with a leading seconds field, e.g. "0 0 0 * * *".
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type Config struct {
	Port     string
	DBUrl    string
	DBSimple bool
	LogLevel string
	Timezone *time.Location
	// Token verification
	JWTIssuer   string
	JWTHSSecret string
	JWKSURL     string
	// Redis
	RedisURL      string
	RedisPassword string
	// Browser origins allowed by CORS
	CORSAllowedOrigins []string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	// Call transition job
	SchedulerEnabled     bool
	TransitionCron       string
	TransitionMaxAttempt int
	TransitionRetryDelay time.Duration
	// SMTP alerts for scheduler escalations
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	AlertEmailTo  string
}

func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_SIMPLE_PROTOCOL", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", DefaultTimezone)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_GLOBAL_THRESHOLD", 100)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("CALL_TRANSITION_CRON", DefaultTransitionCron)
	v.SetDefault("CALL_TRANSITION_MAX_ATTEMPTS", 5)
	v.SetDefault("CALL_TRANSITION_RETRY_DELAY", "5m")
	v.SetDefault("SMTP_PORT", "587")

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Port:                     v.GetString("PORT"),
		DBUrl:                    v.GetString("DATABASE_URL"),
		DBSimple:                 v.GetBool("DATABASE_SIMPLE_PROTOCOL"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		Timezone:                 loc,
		JWTIssuer:                strings.TrimRight(v.GetString("JWT_ISSUER_URL"), "/"),
		JWTHSSecret:              v.GetString("JWT_HS_SECRET"),
		JWKSURL:                  v.GetString("JWKS_URL"),
		RedisURL:                 v.GetString("REDIS_URL"),
		RedisPassword:            v.GetString("REDIS_PASSWORD"),
		CORSAllowedOrigins:       splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimitWindowSeconds:   v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		RateLimitGlobalThreshold: v.GetInt("RATE_LIMIT_GLOBAL_THRESHOLD"),
		SchedulerEnabled:         v.GetBool("SCHEDULER_ENABLED"),
		TransitionCron:           v.GetString("CALL_TRANSITION_CRON"),
		TransitionMaxAttempt:     v.GetInt("CALL_TRANSITION_MAX_ATTEMPTS"),
		TransitionRetryDelay:     v.GetDuration("CALL_TRANSITION_RETRY_DELAY"),
		SMTPHost:                 v.GetString("SMTP_HOST"),
		SMTPPort:                 v.GetString("SMTP_PORT"),
		SMTPUsername:             v.GetString("SMTP_USERNAME"),
		SMTPPassword:             v.GetString("SMTP_PASSWORD"),
		SMTPFromEmail:            v.GetString("SMTP_FROM_EMAIL"),
		AlertEmailTo:             v.GetString("ALERT_EMAIL_TO"),
	}

	// JWKS defaults to the issuer's well-known endpoint
	if cfg.JWKSURL == "" && cfg.JWTIssuer != "" {
		cfg.JWKSURL = cfg.JWTIssuer + "/oauth2/jwks"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := CronParser.Parse(c.TransitionCron); err != nil {
		return fmt.Errorf("invalid CALL_TRANSITION_CRON %q: %w", c.TransitionCron, err)
	}
	if c.TransitionMaxAttempt < 1 {
		return fmt.Errorf("CALL_TRANSITION_MAX_ATTEMPTS must be at least 1, got %d", c.TransitionMaxAttempt)
	}
	if c.TransitionRetryDelay < 0 {
		return fmt.Errorf("CALL_TRANSITION_RETRY_DELAY must not be negative")
	}
	return nil
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
