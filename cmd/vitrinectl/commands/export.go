package commands

import (
	"github.com/spf13/cobra"

	"github.com/jacentio/vitrine/cmd/vitrinectl/output"
	"github.com/jacentio/vitrine/store"
)

var (
	// Export flags
	seed bool
)

// exportCmd writes a store snapshot to the archive
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a store snapshot to the archive",
	Long: `Export a store snapshot to the archive and move the latest pointer to it.

Without --seed the exported store is empty, which resets what the payment
handler restores on its next cold start.

Examples:
  vitrinectl export --seed                 # Archive the demo community
  vitrinectl export --table snapshots-dev  # Archive an empty store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&seed, "seed", false, "Populate the demo community before exporting")
}

func runExport(cmd *cobra.Command) error {
	ctx := cmd.Context()

	arch, logger, err := openArchive(ctx)
	if err != nil {
		return err
	}

	cfg := store.DefaultConfig()
	cfg.Logger = logger.Named("store")
	cfg.SeedDemoData = seed
	snap := store.New(cfg).Snapshot()

	id, err := arch.Export(ctx, snap)
	if err != nil {
		return err
	}

	output.Success("Exported snapshot %s", id)
	output.Muted("%d rows to %s", snap.Len(), arch.Table())
	return nil
}
