package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"OBJECT_STORE", "STORAGE_BUCKET", "STORAGE_PUBLIC_API_URL", "STORAGE_ENDPOINT", "STORAGE_PATH_STYLE", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ObjectStoreType != StoreLocal {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
	if cfg.Bucket != "sbomer-manifests" {
		t.Fatalf("unexpected bucket: %q", cfg.Bucket)
	}
	if cfg.UsePathStyle {
		t.Fatalf("path style should default off without an endpoint")
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Fatalf("unexpected max upload bytes: %d", cfg.MaxUploadBytes)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("OBJECT_STORE", "MinIO")
	t.Setenv("STORAGE_BUCKET", "sboms")
	t.Setenv("STORAGE_PUBLIC_API_URL", "https://sbomer.example.com/")
	t.Setenv("STORAGE_ENDPOINT", "localhost:9000")
	t.Setenv("STORAGE_PATH_STYLE", "")
	t.Setenv("STORAGE_ENSURE_BUCKET", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg := Load()
	if cfg.ObjectStoreType != StoreMinIO {
		t.Fatalf("expected minio, got %q", cfg.ObjectStoreType)
	}
	if cfg.PublicAPIURL != "https://sbomer.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicAPIURL)
	}
	if !cfg.UsePathStyle {
		t.Fatalf("path style should default on with an endpoint")
	}
	if !cfg.EnsureBucket {
		t.Fatalf("expected ensure bucket")
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Fatalf("unexpected max upload bytes: %d", cfg.MaxUploadBytes)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_BUCKET_FROM_FILE=1\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("STORAGE_BUCKET_FROM_FILE", "")
	os.Unsetenv("STORAGE_BUCKET_FROM_FILE")

	Load()
	if got := os.Getenv("STORAGE_BUCKET_FROM_FILE"); got != "1" {
		t.Fatalf("expected .env value to be loaded, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		ObjectStoreType: StoreLocal,
		LocalStoreDir:   "./data",
		Bucket:          "sboms",
		PublicAPIURL:    "http://localhost:8080",
		MaxUploadBytes:  1,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing bucket", mutate: func(c *Config) { c.Bucket = " " }, wantErr: true},
		{name: "relative public url", mutate: func(c *Config) { c.PublicAPIURL = "sbomer" }, wantErr: true},
		{name: "minio without endpoint", mutate: func(c *Config) { c.ObjectStoreType = StoreMinIO }, wantErr: true},
		{name: "s3 with default chain", mutate: func(c *Config) { c.ObjectStoreType = StoreS3 }},
		{name: "unknown store", mutate: func(c *Config) { c.ObjectStoreType = "gcs" }, wantErr: true},
		{name: "zero upload cap", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
