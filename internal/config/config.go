package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	GRPC    GRPCConfig
	Source  SourceConfig
	Session SessionConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type GRPCConfig struct {
	Port int
}

type ServerConfig struct {
	Host        string
	Port        int
	RateLimit   int
	CORSOrigins []string
}

const (
	SourceSample = "sample"
	SourceCSV    = "csv"
	SourceSheets = "sheets"
)

type SourceConfig struct {
	Kind                  string
	CSVLocation           string
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRange           string
	ReloadInterval        time.Duration
}

type SessionConfig struct {
	IdleTimeout     time.Duration
	JanitorInterval time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "localhost"),
			Port:        getEnvInt("SERVER_PORT", 8080),
			RateLimit:   getEnvInt("RATE_LIMIT_RPS", 20),
			CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Source: SourceConfig{
			Kind:                  getEnv("SOURCE_KIND", SourceSample),
			CSVLocation:           getEnv("CSV_LOCATION", ""),
			SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", "./credentials.json"),
			SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
			SheetsRange:           getEnv("SHEETS_RANGE", "Sheet1"),
			ReloadInterval:        getEnvDuration("RELOAD_INTERVAL", 10*time.Minute),
		},
		Session: SessionConfig{
			IdleTimeout:     getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
			JanitorInterval: getEnvDuration("SESSION_JANITOR_INTERVAL", 5*time.Minute),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/battlescape.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Source.Kind {
	case SourceSample:
	case SourceCSV:
		if c.Source.CSVLocation == "" {
			return fmt.Errorf("CSV_LOCATION is required for the csv source")
		}
	case SourceSheets:
		if c.Source.SheetsSpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required for the sheets source")
		}
	default:
		return fmt.Errorf("invalid source kind: %s", c.Source.Kind)
	}

	if c.Source.ReloadInterval < time.Minute {
		return fmt.Errorf("reload interval must be at least 1 minute")
	}
	if c.Session.IdleTimeout < time.Minute {
		return fmt.Errorf("session idle timeout must be at least 1 minute")
	}
	if c.Session.JanitorInterval <= 0 {
		return fmt.Errorf("session janitor interval must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
