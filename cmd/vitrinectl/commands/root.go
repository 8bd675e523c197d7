package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacentio/vitrine/archive"
	"github.com/jacentio/vitrine/internal/config"
	"github.com/jacentio/vitrine/internal/logging"
)

var (
	// Global flags
	tableName  string
	awsProfile string
	logLevel   string

	env = config.Load()

	// newClient builds the DynamoDB client behind the archive.
	newClient = func(ctx context.Context) (archive.API, error) {
		cfg := env
		cfg.AWSProfile = awsProfile
		awsCfg, err := cfg.AWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return dynamodb.NewFromConfig(awsCfg), nil
	}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vitrinectl",
	Short: "Export and inspect vitrine store snapshots",
	Long: `vitrinectl manages the DynamoDB archive of vitrine entity store snapshots.

Commands:
  - export   write a store (optionally seeded with the demo community) to the archive
  - inspect  restore an archived snapshot and verify its derived counters`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tableName, "table", env.ArchiveTable, "DynamoDB snapshot table")
	rootCmd.PersistentFlags().StringVar(&awsProfile, "profile", env.AWSProfile, "AWS shared config profile")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// openArchive connects to the snapshot table named by the global flags.
func openArchive(ctx context.Context) (*archive.Archive, *zap.Logger, error) {
	logger, err := logging.New(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	client, err := newClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := archive.DefaultConfig()
	cfg.Table = tableName
	cfg.Retention = env.SnapshotRetention
	cfg.Logger = logger.Named("archive")
	return archive.New(client, cfg), logger, nil
}
