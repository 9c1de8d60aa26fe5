package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	AdminUsernames     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database: mysql, postgres or sqlite
	DBDriver       string
	DatabaseURI    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBFilePath     string
	DBMaxIdleConns int
	DBMaxOpenConns int
	// Redis for the feed cache and token revocation
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Feed cache: redis, memory or none
	CacheBackend        string
	FeedCacheTTLSeconds int
	// Page sizes per feed view
	IndexPageSize   int
	GroupPageSize   int
	ProfilePageSize int
	FollowPageSize  int
}

// FeedCacheTTL is the lifetime of the cached global first page.
func (c AppConfig) FeedCacheTTL() time.Duration {
	return time.Duration(c.FeedCacheTTLSeconds) * time.Second
}

// IsAdmin reports whether username is listed in AdminUsernames.
func (c AppConfig) IsAdmin(username string) bool {
	if username == "" {
		return false
	}
	for _, name := range c.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(name), username) {
			return true
		}
	}
	return false
}

var cfg AppConfig
var loaded bool

// envBindings maps config keys onto the environment variables that override them.
var envBindings = map[string]string{
	"app.port":                  "APP_PORT",
	"app.jwt_secret":            "JWT_SECRET",
	"app.rate_limit_per_minute": "RATE_LIMIT_PER_MINUTE",
	"app.allowed_origins":       "ALLOWED_ORIGINS",
	"app.admin_usernames":       "ADMIN_USERNAMES",
	"gin.mode":                  "GIN_MODE",
	"gin.log_path":              "GIN_PATH",
	"database.driver":           "DB_DRIVER",
	"database.uri":              "DATABASE_URI",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.name":             "DB_NAME",
	"database.sslmode":          "DB_SSLMODE",
	"database.file_path":        "DB_FILE_PATH",
	"database.max_idle_conns":   "DB_MAX_IDLE_CONNS",
	"database.max_open_conns":   "DB_MAX_OPEN_CONNS",
	"redis.host":                "REDIS_HOST",
	"redis.port":                "REDIS_PORT",
	"redis.db":                  "REDIS_DB",
	"redis.password":            "REDIS_PASSWORD",
	"log.level":                 "LOG_LEVEL",
	"log.path":                  "LOG_PATH",
	"log.max_size_mb":           "LOG_MAX_SIZE_MB",
	"log.max_backups":           "LOG_MAX_BACKUPS",
	"log.max_age_days":          "LOG_MAX_AGE_DAYS",
	"log.compress":              "LOG_COMPRESS",
	"cache.backend":             "CACHE_BACKEND",
	"cache.feed_ttl_seconds":    "FEED_CACHE_TTL",
	"feed.index_page_size":      "INDEX_PAGE_SIZE",
	"feed.group_page_size":      "GROUP_PAGE_SIZE",
	"feed.profile_page_size":    "PROFILE_PAGE_SIZE",
	"feed.follow_page_size":     "FOLLOW_PAGE_SIZE",
}

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> environment variable overrides
	c, err := LoadFile(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if c.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	cfg = c
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

// Use installs c as the active configuration without touching files or the environment.
func Use(c AppConfig) {
	cfg = c
	loaded = true
}

// LoadFile reads path (a missing file is not an error), applies defaults and
// environment overrides, and returns the resulting configuration.
func LoadFile(path string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return AppConfig{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return fromViper(v), nil
}

// applyDefaults sets sane defaults for every optional key.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.rate_limit_per_minute", 60)
	v.SetDefault("app.allowed_origins", []string{"*"})
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.log_path", "logs/go_gin.log")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.name", "yatube")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "yatube.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("cache.backend", "redis")
	v.SetDefault("cache.feed_ttl_seconds", 20)
	v.SetDefault("feed.index_page_size", 10)
	v.SetDefault("feed.group_page_size", 10)
	v.SetDefault("feed.profile_page_size", 5)
	v.SetDefault("feed.follow_page_size", 10)
}

func fromViper(v *viper.Viper) AppConfig {
	return AppConfig{
		AppPort:             v.GetString("app.port"),
		JWTSecret:           v.GetString("app.jwt_secret"),
		RateLimitPerMinute:  v.GetInt("app.rate_limit_per_minute"),
		AllowedOrigins:      readList(v, "app.allowed_origins"),
		AdminUsernames:      readList(v, "app.admin_usernames"),
		GinMode:             v.GetString("gin.mode"),
		GinPath:             v.GetString("gin.log_path"),
		DBDriver:            strings.ToLower(v.GetString("database.driver")),
		DatabaseURI:         v.GetString("database.uri"),
		DBHost:              v.GetString("database.host"),
		DBPort:              v.GetString("database.port"),
		DBUser:              v.GetString("database.user"),
		DBPassword:          v.GetString("database.password"),
		DBName:              v.GetString("database.name"),
		DBSSLMode:           v.GetString("database.sslmode"),
		DBFilePath:          v.GetString("database.file_path"),
		DBMaxIdleConns:      v.GetInt("database.max_idle_conns"),
		DBMaxOpenConns:      v.GetInt("database.max_open_conns"),
		RedisHost:           v.GetString("redis.host"),
		RedisPort:           v.GetInt("redis.port"),
		RedisDB:             v.GetInt("redis.db"),
		RedisPassword:       v.GetString("redis.password"),
		LogLevel:            v.GetString("log.level"),
		LogPath:             v.GetString("log.path"),
		LogMaxSizeMB:        v.GetInt("log.max_size_mb"),
		LogMaxBackups:       v.GetInt("log.max_backups"),
		LogMaxAgeDays:       v.GetInt("log.max_age_days"),
		LogCompress:         v.GetBool("log.compress"),
		CacheBackend:        strings.ToLower(v.GetString("cache.backend")),
		FeedCacheTTLSeconds: v.GetInt("cache.feed_ttl_seconds"),
		IndexPageSize:       v.GetInt("feed.index_page_size"),
		GroupPageSize:       v.GetInt("feed.group_page_size"),
		ProfilePageSize:     v.GetInt("feed.profile_page_size"),
		FollowPageSize:      v.GetInt("feed.follow_page_size"),
	}
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// readList accepts both JSON arrays and comma separated env values.
func readList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
