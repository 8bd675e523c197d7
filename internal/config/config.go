// Package config reads vitrine settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by the vitrine binaries.
type Config struct {
	LogLevel          string
	ArchiveTable      string
	SeedDemoData      bool
	SnapshotRetention time.Duration
	AWSProfile        string
}

// Load reads .env when present and then the process environment. Variables
// already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LogLevel:          getEnv("VITRINE_LOG_LEVEL", "info"),
		ArchiveTable:      getEnv("VITRINE_ARCHIVE_TABLE", "vitrine_snapshots"),
		SeedDemoData:      getEnvAsBool("VITRINE_SEED_DEMO_DATA", false),
		SnapshotRetention: getEnvAsDuration("VITRINE_SNAPSHOT_RETENTION", 30*24*time.Hour),
		AWSProfile:        getEnv("AWS_PROFILE", ""),
	}
}

// AWS loads the default AWS configuration, using the shared profile when one
// is set.
func (c Config) AWS(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.AWSProfile))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}
