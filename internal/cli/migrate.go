package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/bloggu/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Create or upgrade the database schema and list the applied migration versions.",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	database, err := openDB(cmd.Context(), os.Getenv("BLOGGU_DATABASE"))
	if err != nil {
		return err
	}
	defer closeDB(database)

	versions, err := db.AppliedVersions(cmd.Context(), database)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"dialect":    database.Dialect,
			"migrations": versions,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Database is up to date (%s, %d migrations)\n", database.Dialect, len(versions))
	for _, v := range versions {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", v)
	}
	return nil
}
