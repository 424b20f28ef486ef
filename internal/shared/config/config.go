package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreLocal = "local"
	StoreS3    = "s3"
	StoreMinIO = "minio"
)

// Config holds application configuration. It is read once at startup and
// passed by value; nothing mutates it afterwards.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	Bucket          string
	PublicAPIURL    string
	Endpoint        string
	AccessKey       string
	SecretKey       string
	UseSSL          bool
	UsePathStyle    bool
	EnsureBucket    bool
	AWSRegion       string
	MaxUploadBytes  int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(existing(".env", "cmd/.env")...)

	endpoint := getEnv("STORAGE_ENDPOINT", "")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", StoreLocal)),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		Bucket:          getEnv("STORAGE_BUCKET", "sbomer-manifests"),
		PublicAPIURL:    strings.TrimRight(getEnv("STORAGE_PUBLIC_API_URL", "http://localhost:8080"), "/"),
		Endpoint:        endpoint,
		AccessKey:       getEnv("STORAGE_ACCESS_KEY", ""),
		SecretKey:       getEnv("STORAGE_SECRET_KEY", ""),
		UseSSL:          getBool("STORAGE_USE_SSL", false),
		UsePathStyle:    getBool("STORAGE_PATH_STYLE", endpoint != ""),
		EnsureBucket:    getBool("STORAGE_ENSURE_BUCKET", false),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		MaxUploadBytes:  getInt64("MAX_UPLOAD_BYTES", 50<<20),
	}
}

// Validate reports configuration that would make the storage layer unusable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	u, err := url.Parse(c.PublicAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("STORAGE_PUBLIC_API_URL must be an absolute URL, got %q", c.PublicAPIURL)
	}
	switch c.ObjectStoreType {
	case StoreLocal:
		if strings.TrimSpace(c.LocalStoreDir) == "" {
			return fmt.Errorf("LOCAL_STORE_DIR is required for OBJECT_STORE=local")
		}
	case StoreMinIO:
		if strings.TrimSpace(c.Endpoint) == "" {
			return fmt.Errorf("STORAGE_ENDPOINT is required for OBJECT_STORE=minio")
		}
	case StoreS3:
	default:
		return fmt.Errorf("unknown OBJECT_STORE %q", c.ObjectStoreType)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func getInt64(key string, def int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "aws":
		return StoreS3
	case "minio":
		return StoreMinIO
	case "local", "":
		return StoreLocal
	default:
		return raw
	}
}
