package shared

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv string

	// client side (console, seeder)
	BackendBase       string
	RequestTimeout    time.Duration
	RequestRPS        int
	PageSize          int
	LogFile           string
	SessionStore      string // file|redis|memory
	SessionFile       string
	SessionProfile    string
	ClearReasonOnExit bool

	// development backend
	HTTPAddr       string
	MetricsAddr    string
	Store          string // memory|mysql
	MySQLDSN       string
	MigrationsPath string
	JWTSecret      string
	TokenTTL       time.Duration
	CacheTTL       time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string

	// seeder
	SeedWorkers  int
	SeedEmail    string
	SeedPassword string
}

func Load() Config {
	// local dev convenience; real deployments set the environment
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		BackendBase:       env("BACKEND_BASE_URL", "http://localhost:3000"),
		RequestTimeout:    time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 5)) * time.Second,
		RequestRPS:        atoi("REQUEST_RPS", 10),
		PageSize:          atoi("PAGE_SIZE", 10),
		LogFile:           os.Getenv("LOG_FILE"),
		SessionStore:      env("SESSION_STORE", "file"),
		SessionFile:       env("SESSION_FILE", defaultSessionFile()),
		SessionProfile:    env("SESSION_PROFILE", "default"),
		ClearReasonOnExit: envBool("CLEAR_REJECT_REASON_ON_EXIT", false),
		HTTPAddr:          env("HTTP_ADDR", ":3000"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		Store:             env("STORE", "memory"),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/yisu?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC"),
		MigrationsPath:    env("MIGRATIONS_PATH", "file://migrations"),
		JWTSecret:         env("JWT_SECRET", ""),
		TokenTTL:          time.Duration(atoi("TOKEN_TTL_SECONDS", 86400)) * time.Second,
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		SeedWorkers:       atoi("SEED_WORKERS", 4),
		SeedEmail:         env("SEED_EMAIL", "merchant@yisu.local"),
		SeedPassword:      env("SEED_PASSWORD", "merchant123"),
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 5 * time.Second
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	return c
}

// RequireJWTSecret is called by the backend; the console never signs tokens.
func (c Config) RequireJWTSecret() string {
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, using an insecure development secret")
		return "yisu-dev-secret"
	}
	return c.JWTSecret
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "yisu", "token")
}
