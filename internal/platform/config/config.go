package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	Environment     string
	LaneCount       int
	IDWidth         int
	AuditBufferSize int
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	BcryptCost      int
	// CourtToken guards clerk routes. Empty disables them.
	CourtToken string
}

const (
	DefaultAddr            = ":8080"
	DefaultLaneCount       = 10
	DefaultIDWidth         = 7
	DefaultAuditBufferSize = 256
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBcryptCost      = 10
)

// Load reads an optional .env file, then builds the config from the environment.
func Load(files ...string) Server {
	// A missing .env is normal outside development.
	_ = godotenv.Load(files...)
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:            getEnv("COURTHOUSE_ADDR", DefaultAddr),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LaneCount:       getEnvInt("LANE_COUNT", DefaultLaneCount),
		IDWidth:         getEnvInt("ID_WIDTH", DefaultIDWidth),
		AuditBufferSize: getEnvInt("AUDIT_BUFFER_SIZE", DefaultAuditBufferSize),
		LogLevel:        getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		BcryptCost:      getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		CourtToken:      os.Getenv("COURT_TOKEN"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(os.Getenv(key)))); err != nil {
		return fallback
	}
	return level
}
