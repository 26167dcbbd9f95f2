package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCacheTTL applies when REDIS_TTL is unset or a caller passes no TTL.
const DefaultCacheTTL = 600 * time.Second

const (
	BackendMarket = "market"
	BackendCollab = "collab"
)

type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Cache          CacheConfig
	Log            LogConfig
	Recommendation RecommendationConfig
	Seed           SeedConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	Backends    []string
	// WSOrigins lists the Origin values allowed to open notification
	// sockets. Empty accepts any origin.
	WSOrigins []string
}

// Enabled reports whether the named backend route set should be mounted.
func (a AppConfig) Enabled(backend string) bool {
	if len(a.Backends) == 0 {
		return true
	}
	for _, b := range a.Backends {
		if strings.EqualFold(b, backend) {
			return true
		}
	}
	return false
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	SlowQuery             time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	RunMigrations bool
	RunSeeders    bool
}

// DSN renders a keyword/value connection string. appName is reported to the
// server as application_name.
func (d DatabaseConfig) DSN(appName string) string {
	parts := []string{
		"host=" + quoteDSN(strings.TrimSpace(d.DBHost)),
		"port=" + quoteDSN(strings.TrimSpace(d.DBPort)),
		"user=" + quoteDSN(strings.TrimSpace(d.DBUser)),
		"password=" + quoteDSN(d.DBPassword),
		"dbname=" + quoteDSN(strings.TrimSpace(d.DBName)),
		"sslmode=" + quoteDSN(stringOr(strings.TrimSpace(d.DBSSLMode), "disable")),
	}
	if appName != "" {
		parts = append(parts, "application_name="+quoteDSN(appName))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type CacheConfig struct {
	DefaultTTL time.Duration
}

type LogConfig struct {
	Level string
}

type RecommendationConfig struct {
	Cron string
	TopN int
}

// SeedConfig describes the administrator created by the seeders.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	// A missing .env is fine; real deployments inject the environment.
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		Backends:    splitList(opt("APP_BACKENDS")),
		WSOrigins:   splitList(opt("WS_ALLOWED_ORIGINS")),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             stringOr(opt("DB_SSL_MODE"), "disable"),
		ConnectTimeout:        durationSeconds(opt("DB_CONNECT_TIMEOUT_SECONDS"), 5*time.Second),
		SlowQuery:             durationMillis(opt("DB_SLOW_QUERY_MS"), 500*time.Millisecond),
		PoolMaxConns:          int32(intOr(opt("DB_POOL_MAX_CONNS"), 0)),
		PoolMinConns:          int32(intOr(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   durationSeconds(opt("DB_POOL_MAX_CONN_LIFETIME_SECONDS"), 0),
		PoolMaxConnIdleTime:   durationSeconds(opt("DB_POOL_MAX_CONN_IDLE_SECONDS"), 0),
		PoolHealthCheckPeriod: durationSeconds(opt("DB_POOL_HEALTH_CHECK_SECONDS"), 0),
		RunMigrations:         boolOr(opt("DB_RUN_MIGRATIONS"), false),
		RunSeeders:            boolOr(opt("DB_RUN_SEEDERS"), false),
	}

	cfg.Redis = RedisConfig{
		Host:     stringOr(opt("REDIS_HOST"), "localhost"),
		Port:     stringOr(opt("REDIS_PORT"), "6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       intOr(opt("REDIS_DB"), 0),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  durationMinutes(opt("JWT_ACCESS_EXPIRES_MINUTES"), 30*time.Minute),
		RefreshExpiresIn: durationMinutes(opt("JWT_REFRESH_EXPIRES_MINUTES"), 7*24*time.Hour),
	}

	cfg.Cache = CacheConfig{
		DefaultTTL: durationSeconds(opt("REDIS_TTL"), DefaultCacheTTL),
	}

	cfg.Log = LogConfig{Level: stringOr(opt("LOG_LEVEL"), "info")}

	cfg.Recommendation = RecommendationConfig{
		Cron: opt("RECOMMENDATION_CRON"),
		TopN: intOr(opt("RECOMMENDATION_TOP_N"), 20),
	}

	cfg.Seed = SeedConfig{
		AdminUsername: stringOr(opt("SEED_ADMIN_USERNAME"), "admin"),
		AdminEmail:    opt("SEED_ADMIN_EMAIL"),
		AdminPassword: opt("SEED_ADMIN_PASSWORD"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func boolOr(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func durationSeconds(raw string, def time.Duration) time.Duration {
	v := intOr(raw, 0)
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func durationMillis(raw string, def time.Duration) time.Duration {
	v := intOr(raw, 0)
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Millisecond
}

func durationMinutes(raw string, def time.Duration) time.Duration {
	v := intOr(raw, 0)
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Minute
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, strings.ToLower(p))
	}
	return out
}
