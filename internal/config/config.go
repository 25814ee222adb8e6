package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPAddr       string
	LogLevel       string
	Env            string // dev|prod
	SentryDSN      string
	BotToken       string // пусто: бот не запускается
	AdminIDs       []int64
	Location       *time.Location
	CurrencySymbol string
	ReportRowLimit int
	DBTimeout      time.Duration
	JobInterval    time.Duration
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("required env DATABASE_URL is empty")
	}

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	limit, err := strconv.Atoi(getenv("REPORT_ROW_LIMIT", "100"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("REPORT_ROW_LIMIT: bad value %q", os.Getenv("REPORT_ROW_LIMIT"))
	}

	dbTimeout, err := time.ParseDuration(getenv("DB_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("DB_TIMEOUT: %w", err)
	}
	jobInterval, err := time.ParseDuration(getenv("JOB_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("JOB_INTERVAL: %w", err)
	}

	cfg := &Config{
		DatabaseURL:    dsn,
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		BotToken:       os.Getenv("BOT_TOKEN"),
		AdminIDs:       adminIDs,
		Location:       loc,
		CurrencySymbol: getenv("CURRENCY_SYMBOL", "₹"),
		ReportRowLimit: limit,
		DBTimeout:      dbTimeout,
		JobInterval:    jobInterval,
	}
	return cfg, nil
}

// IsAdminChat: chatID из ADMIN_IDS.
func (c *Config) IsAdminChat(chatID int64) bool {
	for _, id := range c.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
