// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL  string
	HTTPAddr    string
	HTTPTimeout time.Duration
	LogLevel    string
	SessionFile string
	// Location reads scheduled dates that carry no offset.
	Location    *time.Location

	DatabaseURL string

	AMQPURL   string
	AMQPQueue string

	OTPAuthorizedEmails []string
	OTPTTL              time.Duration
	OTPSendPerMinute    int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; OS environment wins either way
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("API_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_FILE", "")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_QUEUE", "campaign_batches")
	v.SetDefault("OTP_AUTHORIZED_EMAILS", "")
	v.SetDefault("OTP_TTL", 300*time.Second)
	v.SetDefault("OTP_SEND_PER_MINUTE", 5)
	v.AutomaticEnv()

	cfg := &Config{
		APIBaseURL:          strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		HTTPTimeout:         v.GetDuration("HTTP_TIMEOUT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		SessionFile:         v.GetString("SESSION_FILE"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		AMQPURL:             v.GetString("AMQP_URL"),
		AMQPQueue:           v.GetString("AMQP_QUEUE"),
		OTPAuthorizedEmails: splitList(v.GetString("OTP_AUTHORIZED_EMAILS")),
		OTPTTL:              v.GetDuration("OTP_TTL"),
		OTPSendPerMinute:    v.GetInt("OTP_SEND_PER_MINUTE"),
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", v.GetString("TIMEZONE"), err)
	}
	cfg.Location = loc

	if cfg.DatabaseURL == "" && v.GetString("DB_HOST") != "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			v.GetString("DB_USER"), v.GetString("DB_PASSWORD"),
			v.GetString("DB_HOST"), v.GetString("DB_PORT"), v.GetString("DB_NAME"),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}
	if c.OTPSendPerMinute < 1 {
		return fmt.Errorf("OTP_SEND_PER_MINUTE must be at least 1")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
