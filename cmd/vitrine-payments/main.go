// Command vitrine-payments is a Lambda function that applies payment
// processor events to the entity store and archives the result.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/jacentio/vitrine/archive"
	"github.com/jacentio/vitrine/internal/config"
	"github.com/jacentio/vitrine/internal/logging"
	"github.com/jacentio/vitrine/store"
	"github.com/jacentio/vitrine/stream"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}

	archiveCfg := archive.DefaultConfig()
	archiveCfg.Table = cfg.ArchiveTable
	archiveCfg.Retention = cfg.SnapshotRetention
	archiveCfg.Logger = logger.Named("archive")
	arch := archive.New(dynamodb.NewFromConfig(awsCfg), archiveCfg)

	s, err := restore(ctx, arch, cfg, logger)
	if err != nil {
		logger.Fatal("failed to restore store", zap.Error(err))
	}

	handler := stream.NewHandler(s, arch.Saver(s), logger.Named("payments"))
	logger.Info("starting payment handler", zap.String("table", arch.Table()))
	lambda.Start(handler.HandlePaymentEvent)
}

// restore builds the store from the latest archived snapshot. Without one
// the store starts empty, or with the demo community when configured.
func restore(ctx context.Context, arch *archive.Archive, cfg config.Config, logger *zap.Logger) (*store.Store, error) {
	storeCfg := store.DefaultConfig()
	storeCfg.Logger = logger.Named("store")

	snap, id, err := arch.ImportLatest(ctx)
	if errors.Is(err, archive.ErrNoSnapshot) {
		storeCfg.SeedDemoData = cfg.SeedDemoData
		logger.Info("no archived snapshot, starting fresh", zap.Bool("seeded", cfg.SeedDemoData))
		return store.New(storeCfg), nil
	}
	if err != nil {
		return nil, err
	}

	s := store.New(storeCfg)
	if err := s.Restore(snap); err != nil {
		return nil, err
	}
	logger.Info("restored store", zap.String("snapshotID", id), zap.Int("rows", snap.Len()))
	return s, nil
}
