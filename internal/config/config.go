package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // HATTER_DATABASE_URL (required)
	GRPCAddr    string // HATTER_GRPC_ADDR (default ":9090")
	HTTPAddr    string // HATTER_HTTP_ADDR (default ":8080")
	NATSURL     string // HATTER_NATS_URL (optional, empty = no events)
	AuthToken   string // HATTER_AUTH_TOKEN (optional, empty = auth disabled)

	// Registry settings
	RegistryURL  string // HATTER_REGISTRY_URL (optional, empty = in-process dev registry)
	RegistrySeed string // HATTER_REGISTRY_SEED (optional TOML seed for the dev registry)
	Identity     string // HATTER_IDENTITY (default "hatter-factory")

	// Sync settings
	SyncInterval   time.Duration // HATTER_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // HATTER_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // HATTER_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // HATTER_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // HATTER_SYNC_S3_KEY (default "hatter/backup.jsonl")
	SyncGitRepo    string        // HATTER_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // HATTER_SYNC_GIT_FILE (default "hatter.jsonl")
	SyncGitBranch  string        // HATTER_SYNC_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("HATTER_DATABASE_URL"),
		GRPCAddr:       envOrDefault("HATTER_GRPC_ADDR", ":9090"),
		HTTPAddr:       envOrDefault("HATTER_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("HATTER_NATS_URL"),
		AuthToken:      os.Getenv("HATTER_AUTH_TOKEN"),
		RegistryURL:    os.Getenv("HATTER_REGISTRY_URL"),
		RegistrySeed:   os.Getenv("HATTER_REGISTRY_SEED"),
		Identity:       envOrDefault("HATTER_IDENTITY", "hatter-factory"),
		SyncS3Bucket:   os.Getenv("HATTER_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("HATTER_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("HATTER_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("HATTER_SYNC_S3_KEY", "hatter/backup.jsonl"),
		SyncGitRepo:    os.Getenv("HATTER_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("HATTER_SYNC_GIT_FILE", "hatter.jsonl"),
		SyncGitBranch:  envOrDefault("HATTER_SYNC_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("HATTER_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("HATTER_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("HATTER_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
