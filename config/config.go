package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr     string
	APIURL         string
	HTTPTimeout    time.Duration
	SessionStore   string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	MetricsEnabled bool
	AlertBotToken  string
	AdminTelegram  int64
	HealthSchedule string
	TrustedProxies []string
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var AppCfg AppConfig

var ErrMissingSecret = errors.New("SESSION_SECRET is not set")

// LoadConfig reads .env (if any) and the environment into AppCfg. Invalid or
// missing critical values stop the process.
func LoadConfig() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, relying on environment variables")
	}
	cfg, err := Parse(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppCfg = cfg
}

// Parse builds an AppConfig from a getenv-style lookup.
func Parse(getenv func(string) string) (AppConfig, error) {
	cfg := AppConfig{
		ListenAddr:     orDefault(getenv("LISTEN_ADDR"), ":8080"),
		APIURL:         strings.TrimRight(orDefault(getenv("API_URL"), "http://localhost:3000/api/v1"), "/"),
		SessionStore:   strings.ToLower(orDefault(getenv("SESSION_STORE"), StoreMemory)),
		DatabaseURL:    getenv("DATABASE_URL"),
		RedisAddr:      orDefault(getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD"),
		SessionSecret:  getenv("SESSION_SECRET"),
		AlertBotToken:  getenv("ALERT_BOT_TOKEN"),
		HealthSchedule: orDefault(getenv("HEALTH_INTERVAL"), "@every 1m"),
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration(getenv("HTTP_TIMEOUT"), 0); err != nil {
		return cfg, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}
	if cfg.SessionTTL, err = parseDuration(getenv("SESSION_TTL"), 24*time.Hour); err != nil {
		return cfg, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if v := getenv("REDIS_DB"); v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("REDIS_DB: %w", err)
		}
	}
	if v := getenv("ADMIN_TELEGRAM_ID"); v != "" {
		if cfg.AdminTelegram, err = strconv.ParseInt(v, 10, 64); err != nil {
			return cfg, fmt.Errorf("ADMIN_TELEGRAM_ID: %w", err)
		}
	}
	cfg.TrustedProxies = parseList(getenv("TRUSTED_PROXIES"))
	cfg.CookieSecure = parseBool(getenv("COOKIE_SECURE"))
	cfg.MetricsEnabled = parseBool(getenv("METRICS_ENABLED"))

	if cfg.SessionSecret == "" {
		return cfg, ErrMissingSecret
	}
	switch cfg.SessionStore {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required for the postgres session store")
		}
	default:
		return cfg, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func parseList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
