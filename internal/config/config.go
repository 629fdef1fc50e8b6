package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Endpoint
	ServerIP string `env:"SERVER_IP" default:"127.0.0.1"`
	TCPPort  int    `env:"TCP_PORT" default:"8080"`
	Backlog  int    `env:"TCP_BACKLOG" default:"3"`

	// Exchange
	BufferSize    int    `env:"BUFFER_SIZE" default:"1024"`
	ClientMessage string `env:"CLIENT_MESSAGE" default:"Hello from client"`
	ServerReply   string `env:"SERVER_REPLY" default:"im the server !!!\n"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Monitoring
	PrometheusEnabled bool   `env:"PROMETHEUS_ENABLED" default:"false"`
	MetricsFile       string `env:"METRICS_FILE"`
}

const (
	defaultServerIP      = "127.0.0.1"
	defaultTCPPort       = 8080
	defaultBacklog       = 3
	defaultBufferSize    = 1024
	defaultClientMessage = "Hello from client"
	defaultServerReply   = "im the server !!!\n"
)

// Default returns the built-in constants without looking at the environment
func Default() *Config {
	return &Config{
		GoEnv:         "development",
		ServerIP:      defaultServerIP,
		TCPPort:       defaultTCPPort,
		Backlog:       defaultBacklog,
		BufferSize:    defaultBufferSize,
		ClientMessage: defaultClientMessage,
		ServerReply:   defaultServerReply,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional, the built-in defaults are enough to run
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	// Endpoint
	if err := loadEnvString(&config.ServerIP, "SERVER_IP", defaultServerIP); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.TCPPort, "TCP_PORT", defaultTCPPort); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.Backlog, "TCP_BACKLOG", defaultBacklog); err != nil {
		return nil, err
	}

	// Exchange
	if err := loadEnvInt(&config.BufferSize, "BUFFER_SIZE", defaultBufferSize); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.ClientMessage, "CLIENT_MESSAGE", defaultClientMessage); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.ServerReply, "SERVER_REPLY", defaultServerReply); err != nil {
		return nil, err
	}

	// Logging
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}

	// Monitoring
	if err := loadEnvBool(&config.PrometheusEnabled, "PROMETHEUS_ENABLED", false); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MetricsFile, "METRICS_FILE", ""); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %w", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errs []string

	// port 0 is allowed, the kernel picks one
	if c.TCPPort < 0 || c.TCPPort > 65535 {
		errs = append(errs, "TCP_PORT must be between 0 and 65535")
	}
	if c.Backlog < 1 {
		errs = append(errs, "TCP_BACKLOG must be at least 1")
	}
	// one byte is always kept back as the terminator
	if c.BufferSize < 2 {
		errs = append(errs, "BUFFER_SIZE must be at least 2")
	}
	if ip := net.ParseIP(c.ServerIP); ip == nil || ip.To4() == nil {
		errs = append(errs, "SERVER_IP must be an IPv4 address")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.PrometheusEnabled && c.MetricsFile == "" {
		errs = append(errs, "METRICS_FILE is required when PROMETHEUS_ENABLED is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// NewLogger builds the structured logger described by LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(c.LogLevel),
		AddSource: c.IsDevelopment(),
	}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
