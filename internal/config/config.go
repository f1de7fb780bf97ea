package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when neither flag nor environment provides a value
const (
	DefaultPort           = 8081
	DefaultDBPath         = "mealqueue.db"
	DefaultLogLevel       = "info"
	DefaultRetention      = 100
	DefaultServiceSeconds = 60
	DefaultCandidates     = 3
)

// Config holds the runtime configuration
type Config struct {
	Port           int
	DBPath         string
	LogLevel       string
	Retention      int    // completed-history size
	ServiceSeconds int    // per-job dispense estimate
	Candidates     int    // menus drawn per vote
	SeedFile       string // optional directory import on startup
}

// ServiceTime returns the per-job estimate as a duration
func (c Config) ServiceTime() time.Duration {
	return time.Duration(c.ServiceSeconds) * time.Second
}

// Load parses flags with environment fallback. A .env file in the working
// directory is read first; missing is fine.
func Load(args []string) (Config, error) {
	godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("mealqueue", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", 0, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite database path")
	fs.StringVar(&cfg.LogLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&cfg.Retention, "retention", 0, "Completed-history retention count")
	fs.IntVar(&cfg.ServiceSeconds, "servicetime", 0, "Per-job service time estimate in seconds")
	fs.IntVar(&cfg.Candidates, "candidates", 0, "Menus drawn as candidates when a slot opens")
	fs.StringVar(&cfg.SeedFile, "seed", "", "JSON file of students and menus to import on startup")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, errors.New("port out of range")
	}

	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("DB_PATH")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, errors.New("invalid log level (debug, info, warn, error)")
	}

	if cfg.Retention == 0 {
		n, err := envInt("QUEUE_RETENTION")
		if err != nil {
			return Config{}, err
		}
		cfg.Retention = n
	}
	if cfg.Retention == 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Retention < 1 {
		return Config{}, errors.New("retention must be positive")
	}

	if cfg.ServiceSeconds == 0 {
		n, err := envInt("SERVICE_TIME_SECONDS")
		if err != nil {
			return Config{}, err
		}
		cfg.ServiceSeconds = n
	}
	if cfg.ServiceSeconds == 0 {
		cfg.ServiceSeconds = DefaultServiceSeconds
	}
	if cfg.ServiceSeconds < 1 {
		return Config{}, errors.New("service time must be positive")
	}

	if cfg.Candidates == 0 {
		n, err := envInt("CANDIDATE_COUNT")
		if err != nil {
			return Config{}, err
		}
		cfg.Candidates = n
	}
	if cfg.Candidates == 0 {
		cfg.Candidates = DefaultCandidates
	}
	if cfg.Candidates < 1 {
		return Config{}, errors.New("candidate count must be positive")
	}

	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}

	return cfg, nil
}

func envInt(key string) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + key + " env variable")
	}
	return n, nil
}
