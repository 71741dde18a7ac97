package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"statement-distributor/internal/models"
	"statement-distributor/internal/store"
	apperrors "statement-distributor/pkg/errors"
)

var (
	dbSource string
	dbPath   string
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Local database helpers",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the tables a source is read from",
	Long: `Init creates an SQLite database with the tables the extractor for the given
source reads. Useful for local dry runs against hand-seeded data.

Example:
  distributor db init --source bill --database ./bill.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := models.ParseSource(dbSource)
		if err != nil {
			return apperrors.ConfigError(apperrors.CodeInvalidConfig, "--source", dbSource, err)
		}
		if err := store.InitSchema(dbPath, source); err != nil {
			return apperrors.WrapIfNeeded(err, apperrors.CategoryInternal, apperrors.CodeStoreAccess, "initialise database")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialised %s schema in %s\n", source, dbPath)
		return nil
	},
}

func init() {
	dbInitCmd.Flags().StringVar(&dbSource, "source", "", "statement source: ramp, bill (required)")
	dbInitCmd.Flags().StringVar(&dbPath, "database", "", "path of the SQLite file to create (required)")
	dbInitCmd.MarkFlagRequired("source")
	dbInitCmd.MarkFlagRequired("database")

	dbCmd.AddCommand(dbInitCmd)
	rootCmd.AddCommand(dbCmd)
}
