package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ghaniswara/dharmasaathi/pkg/path"
	"github.com/joho/godotenv"
)

type IConfig interface {
	Get(key string) string
	GetInt(key string, fallback int) int
	GetBool(key string, fallback bool) bool
	GetDuration(key string, fallback time.Duration) time.Duration
	Location() *time.Location
}

type Config struct {
	Key map[string]string
	Env string
}

// env scoped keys, read as <ENV>_<KEY>
var scopedKeys = map[string]string{
	"POSTGRES_DB_NAME":          "",
	"POSTGRES_USER":             "",
	"POSTGRES_PASSWORD":         "",
	"POSTGRES_HOST":             "localhost",
	"POSTGRES_PORT":             "5432",
	"REDIS_HOST":                "localhost",
	"REDIS_PORT":                "6379",
	"REDIS_PASSWORD":            "",
	"JWT_SECRET":                "",
	"JWT_TTL":                   "24h",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "text",
	"DB_LOG_LEVEL":              "warn",
	"FREE_DAILY_SWIPE_LIMIT":    "10",
	"PREMIUM_DAILY_SWIPE_LIMIT": "0",
	"TIMEZONE":                  "Asia/Kolkata",
	"PAYMENT_KEY_ID":            "",
	"PAYMENT_KEY_SECRET":        "",
	"PAYMENT_API_URL":           "https://api.razorpay.com/v1",
	"STORAGE_ENDPOINT":          "",
	"STORAGE_REGION":            "auto",
	"STORAGE_ACCESS_KEY_ID":     "",
	"STORAGE_SECRET_ACCESS_KEY": "",
	"STORAGE_BUCKET":            "user-photos",
	"PHOTO_URL_TTL":             "300",
	"ADMIN_STATS_TTL":           "60s",
	"MIGRATIONS_DIR":            "migrations",
	"MIGRATE_ON_START":          "false",
	"PREMIUM_SWEEP_INTERVAL":    "1h",
	"DAILY_STAT_RETENTION_DAYS": "30",
}

func NewConfig(env string) (*Config, error) {
	env = strings.ToUpper(env)

	basePath, err := os.Getwd()

	if err != nil {
		return nil, err
	}

	// a missing .env is fine, the process environment still applies
	if root, err := path.FindRoot(basePath, ".env", false); err == nil {
		if err := godotenv.Load(root + "/.env"); err != nil {
			return nil, err
		}
	}

	keys := make(map[string]string, len(scopedKeys)+1)
	for key, def := range scopedKeys {
		keys[key] = getEnv(env+"_"+key, def)
	}
	keys["PORT"] = getEnv("PORT", "8080")

	return &Config{
		Key: keys,
		Env: env,
	}, nil
}

// NewStaticConfig builds a config from explicit values on top of the defaults.
func NewStaticConfig(env string, values map[string]string) *Config {
	keys := make(map[string]string, len(scopedKeys)+1)
	for key, def := range scopedKeys {
		keys[key] = def
	}
	keys["PORT"] = "8080"
	for key, value := range values {
		keys[key] = value
	}
	return &Config{Key: keys, Env: strings.ToUpper(env)}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (c *Config) Get(key string) string {
	return c.Key[key]
}

func (c *Config) GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Key[key]))
	if err != nil {
		return fallback
	}
	return v
}

func (c *Config) GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Key[key]))
	if err != nil {
		return fallback
	}
	return v
}

// GetDuration accepts Go duration strings. A bare integer is read as seconds.
func (c *Config) GetDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(c.Key[key])
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// Location resolves TIMEZONE, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Get("TIMEZONE"))
	if err != nil {
		return time.UTC
	}
	return loc
}
