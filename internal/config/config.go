// Package config loads settings for imagestudio and imagegend from an
// optional .env file, the environment and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Validation errors
var (
	ErrMissingEndpoint  = errors.New("IMAGESTUDIO_ENDPOINT is required")
	ErrInvalidKV        = errors.New("IMAGESTUDIO_KV must be file or redis")
	ErrMissingRedisURL  = errors.New("REDIS_URL is required when IMAGESTUDIO_KV=redis")
	ErrInvalidProvider  = errors.New("IMAGEGEND_PROVIDER must be bedrock or gemini")
	ErrMissingGeminiKey = errors.New("GEMINI_API_KEY or GOOGLE_API_KEY is required for the gemini provider")
	ErrInvalidDBDriver  = errors.New("DB_DRIVER must be sqlite, postgres or mysql")
	ErrInvalidRPM       = errors.New("REQUESTS_PER_MINUTE must be a non-negative integer")
)

// Key-value backends
const (
	KVFile  = "file"
	KVRedis = "redis"
)

// Server providers
const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
)

// Config holds the settings of both binaries. Each binary validates only
// the part it uses.
type Config struct {
	// Client
	Endpoint    string
	DataDir     string
	DownloadDir string
	KV          string
	RedisURL    string

	// Shared
	LogLevel  string
	LogFormat string

	// RequestsPerMinute limits generation requests: per session in the
	// client, across all callers in the server. 0 disables the limit.
	RequestsPerMinute int

	// Server
	Addr          string
	Provider      string
	AWSRegion     string
	BedrockRegion string
	Bucket        string
	PublicURL     string
	S3Endpoint    string
	DBDriver      string
	DBDSN         string
	GeminiAPIKey  string
}

// Load reads .env from the working directory if present, then the
// environment, then parses args with a FlagSet named name. Flag errors are
// returned, including flag.ErrHelp.
func Load(name string, args []string, output io.Writer) (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		flags.SetOutput(output)
	}
	cfg.bindFlags(flags)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Endpoint:    os.Getenv("IMAGESTUDIO_ENDPOINT"),
		DataDir:     getenv("IMAGESTUDIO_DATA_DIR", defaultDataDir()),
		DownloadDir: getenv("IMAGESTUDIO_DOWNLOAD_DIR", "."),
		KV:          strings.ToLower(getenv("IMAGESTUDIO_KV", KVFile)),
		RedisURL:    os.Getenv("REDIS_URL"),

		LogLevel:  getenv("IMAGESTUDIO_LOG_LEVEL", "info"),
		LogFormat: getenv("IMAGESTUDIO_LOG_FORMAT", "text"),

		Addr:          getenv("IMAGEGEND_ADDR", ":8080"),
		Provider:      strings.ToLower(getenv("IMAGEGEND_PROVIDER", ProviderBedrock)),
		AWSRegion:     os.Getenv("AWS_REGION"),
		BedrockRegion: getenv("BEDROCK_REGION", "us-east-1"),
		Bucket:        os.Getenv("IMAGE_BUCKET"),
		PublicURL:     os.Getenv("IMAGE_PUBLIC_URL"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		DBDriver:      strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:         getenv("DB_DSN", "imagestudio.db"),
		GeminiAPIKey:  getenv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
	}

	if v := os.Getenv("REQUESTS_PER_MINUTE"); v != "" {
		rpm, err := strconv.Atoi(v)
		if err != nil || rpm < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRPM, v)
		}
		cfg.RequestsPerMinute = rpm
	}

	return cfg, nil
}

func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "image generation endpoint URL")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory for saved images")
	fs.StringVar(&c.DownloadDir, "download-dir", c.DownloadDir, "directory downloads are written to")
	fs.StringVar(&c.KV, "kv", c.KV, "saved image backend: file or redis")
	fs.StringVar(&c.RedisURL, "redis-url", c.RedisURL, "redis URL for -kv=redis")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")
	fs.IntVar(&c.RequestsPerMinute, "rpm", c.RequestsPerMinute, "client-side request limit, 0 for none")
	fs.StringVar(&c.Addr, "addr", c.Addr, "server listen address")
	fs.StringVar(&c.Provider, "provider", c.Provider, "server provider: bedrock or gemini")
	fs.StringVar(&c.Bucket, "bucket", c.Bucket, "bucket for generated images")
	fs.StringVar(&c.DBDriver, "db-driver", c.DBDriver, "sqlite, postgres or mysql")
	fs.StringVar(&c.DBDSN, "db-dsn", c.DBDSN, "database DSN")
	fs.StringVar(&c.GeminiAPIKey, "gemini-api-key", c.GeminiAPIKey, "API key for -provider=gemini")
}

// ValidateClient checks the settings used by the interactive client.
func (c *Config) ValidateClient() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	switch c.KV {
	case KVFile:
	case KVRedis:
		if c.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKV, c.KV)
	}
	if c.RequestsPerMinute < 0 {
		return ErrInvalidRPM
	}
	return nil
}

// ValidateServer checks the settings used by the endpoint server.
func (c *Config) ValidateServer() error {
	switch c.Provider {
	case ProviderBedrock:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return ErrMissingGeminiKey
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.Provider)
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDBDriver, c.DBDriver)
	}
	if c.RequestsPerMinute < 0 {
		return ErrInvalidRPM
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".imagestudio"
	}
	return filepath.Join(dir, "imagestudio")
}
