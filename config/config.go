package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values. Sensitive data
// has no in-code default and must come from the config file or environment.
type AppConfig struct {
	AppPort     string
	Environment string // development | production
	GinMode     string

	JWTSecret     string
	JWTIssuer     string
	JWTAudience   string
	TokenTTLHours int
	TokenTTL      time.Duration

	DatabaseURI      string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBTimeoutSeconds int

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	RateLimitPerMinute int
	AllowedOrigins     []string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load reads configuration once during boot. Precedence:
// config/config.json -> defaults -> environment variable overrides
// (a local .env file is merged into the environment first).
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = godotenv.Load()

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}
	cfg.TokenTTL = time.Duration(cfg.TokenTTLHours) * time.Hour

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting overrides the cached configuration. Test helper only.
func SetForTesting(c AppConfig) {
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Duration(nzInt(c.TokenTTLHours, 168)) * time.Hour
	}
	cfg = c
	loaded = true
}

// loadJSONConfig reads a JSON file into out if present. Returns an error
// only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	section := func(key string, dst interface{}) {
		if b, ok := raw[key]; ok {
			_ = json.Unmarshal(b, dst)
		}
	}

	section("app", &struct {
		AppPort            *string
		Environment        *string
		GinMode            *string
		RateLimitPerMinute *int
		AllowedOrigins     *[]string
	}{&out.AppPort, &out.Environment, &out.GinMode, &out.RateLimitPerMinute, &out.AllowedOrigins})

	section("auth", &struct {
		JWTSecret     *string
		JWTIssuer     *string
		JWTAudience   *string
		TokenTTLHours *int
	}{&out.JWTSecret, &out.JWTIssuer, &out.JWTAudience, &out.TokenTTLHours})

	section("database", &struct {
		DatabaseURI      *string
		DBHost           *string
		DBPort           *string
		DBUser           *string
		DBPassword       *string
		DBName           *string
		DBTimeoutSeconds *int
	}{&out.DatabaseURI, &out.DBHost, &out.DBPort, &out.DBUser, &out.DBPassword, &out.DBName, &out.DBTimeoutSeconds})

	section("redis", &struct {
		RedisHost     *string
		RedisPort     *int
		RedisDB       *int
		RedisPassword *string
	}{&out.RedisHost, &out.RedisPort, &out.RedisDB, &out.RedisPassword})

	section("log", &struct {
		Level      *string
		Path       *string
		MaxSizeMB  *int
		MaxBackups *int
		MaxAgeDays *int
		Compress   *bool
	}{&out.LogLevel, &out.LogPath, &out.LogMaxSizeMB, &out.LogMaxBackups, &out.LogMaxAgeDays, &out.LogCompress})

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "goblog"
	}
	if c.JWTAudience == "" {
		c.JWTAudience = "goblog-clients"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 7 * 24
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "goblog"
	}
	if c.DBTimeoutSeconds == 0 {
		c.DBTimeoutSeconds = 10
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values.
func applyEnvOverrides(c *AppConfig) {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(v)
		}
	}

	setStr("APP_PORT", &c.AppPort)
	setStr("APP_ENV", &c.Environment)
	setStr("GIN_MODE", &c.GinMode)
	setStr("JWT_SECRET", &c.JWTSecret)
	setStr("JWT_ISSUER", &c.JWTIssuer)
	setStr("JWT_AUDIENCE", &c.JWTAudience)
	setInt("TOKEN_TTL_HOURS", &c.TokenTTLHours)
	setStr("DATABASE_URI", &c.DatabaseURI)
	setStr("DB_HOST", &c.DBHost)
	setStr("DB_PORT", &c.DBPort)
	setStr("DB_USER", &c.DBUser)
	setStr("DB_PASSWORD", &c.DBPassword)
	setStr("DB_NAME", &c.DBName)
	setInt("DB_TIMEOUT_SECONDS", &c.DBTimeoutSeconds)
	setStr("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setStr("REDIS_PASSWORD", &c.RedisPassword)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	setStr("LOG_LEVEL", &c.LogLevel)
	setStr("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
}

// IsProduction reports whether error detail should be redacted.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func nzInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
