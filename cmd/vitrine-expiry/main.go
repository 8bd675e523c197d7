// Command vitrine-expiry is a Lambda function on the snapshot table's stream.
// It clears the latest pointer once DynamoDB TTL removes the snapshot it
// names.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/jacentio/vitrine/archive"
	"github.com/jacentio/vitrine/internal/config"
	"github.com/jacentio/vitrine/internal/logging"
	"github.com/jacentio/vitrine/stream"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	awsCfg, err := cfg.AWS(context.Background())
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}

	archiveCfg := archive.DefaultConfig()
	archiveCfg.Table = cfg.ArchiveTable
	archiveCfg.Retention = cfg.SnapshotRetention
	archiveCfg.Logger = logger.Named("archive")
	arch := archive.New(dynamodb.NewFromConfig(awsCfg), archiveCfg)

	handler := stream.NewExpiryHandler(arch, logger.Named("expiry"))
	lambda.Start(handler.HandleSnapshotExpiry)
}
