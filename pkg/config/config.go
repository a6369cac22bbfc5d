package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduling SchedulingConfig
	Roster     RosterConfig
	Jobs       JobsConfig
	Exports    ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig tunes the availability grid and booking rules.
type SchedulingConfig struct {
	// MaxLanes caps how many parallel display lanes a day may use. Slots
	// beyond the cap are not distinguished further.
	MaxLanes int
	// WeeksLookahead bounds how far forward postings are visible.
	WeeksLookahead int
	// PostingWaitDays and OnHoldPeriodDays feed recency warnings on the
	// roster view. They never affect ranking order.
	PostingWaitDays  int
	OnHoldPeriodDays int
	// NoShowSuspendThreshold is the number of accumulated no-shows at which
	// a student is suspended.
	NoShowSuspendThreshold int
	CancellationGrace      time.Duration
}

// RosterConfig governs roster ranking exposure and cache tuning.
type RosterConfig struct {
	CacheTTL time.Duration
}

// JobsConfig configures the background sweep workers.
type JobsConfig struct {
	Workers       int
	MaxRetries    int
	RetryDelay    time.Duration
	SweepInterval time.Duration
}

// ExportsConfig gates the weekly sheet export endpoints. An empty ArchiveDir
// disables the retained on-disk copy of generated sheets.
type ExportsConfig struct {
	Enabled    bool
	ArchiveDir string
	ArchiveTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduling = SchedulingConfig{
		MaxLanes:               v.GetInt("SCHEDULING_MAX_LANES"),
		WeeksLookahead:         v.GetInt("SCHEDULING_WEEKS_LOOKAHEAD"),
		PostingWaitDays:        v.GetInt("SCHEDULING_POSTING_WAIT_DAYS"),
		OnHoldPeriodDays:       v.GetInt("SCHEDULING_ONHOLD_PERIOD_DAYS"),
		NoShowSuspendThreshold: v.GetInt("SCHEDULING_NOSHOW_SUSPEND_THRESHOLD"),
		CancellationGrace:      parseDuration(v.GetString("SCHEDULING_CANCELLATION_GRACE"), 24*time.Hour),
	}

	cfg.Roster = RosterConfig{
		CacheTTL: parseDuration(v.GetString("ROSTER_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Workers:       v.GetInt("JOBS_WORKERS"),
		MaxRetries:    v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay:    parseDuration(v.GetString("JOBS_RETRY_DELAY"), time.Second),
		SweepInterval: parseDuration(v.GetString("JOBS_SWEEP_INTERVAL"), time.Hour),
	}

	cfg.Exports = ExportsConfig{
		Enabled:    v.GetBool("ENABLE_EXPORTS"),
		ArchiveDir: v.GetString("EXPORT_ARCHIVE_DIR"),
		ArchiveTTL: parseDuration(v.GetString("EXPORT_ARCHIVE_TTL"), 30*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "flightline")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULING_MAX_LANES", 6)
	v.SetDefault("SCHEDULING_WEEKS_LOOKAHEAD", 4)
	v.SetDefault("SCHEDULING_POSTING_WAIT_DAYS", 7)
	v.SetDefault("SCHEDULING_ONHOLD_PERIOD_DAYS", 30)
	v.SetDefault("SCHEDULING_NOSHOW_SUSPEND_THRESHOLD", 2)
	v.SetDefault("SCHEDULING_CANCELLATION_GRACE", "24h")

	v.SetDefault("ROSTER_CACHE_TTL", "5m")

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_MAX_RETRIES", 3)
	v.SetDefault("JOBS_RETRY_DELAY", "1s")
	v.SetDefault("JOBS_SWEEP_INTERVAL", "1h")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORT_ARCHIVE_DIR", "")
	v.SetDefault("EXPORT_ARCHIVE_TTL", "720h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
