// Package cli defines the cobra command tree for bloggu.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/bloggu/internal/client"
	"github.com/evcraddock/bloggu/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bloggu",
		Short:         "Blogging backend with group-scoped comments",
		Long:          "Run the bloggu server, or talk to one: sign up, log in, post and edit comments and browse their edit history.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "database path or postgres:// URL (default: $BLOGGU_DATABASE or ~/.bloggu/bloggu.db)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSignupCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newUsersCmd(),
		newCommentCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)

	return root
}

// databaseDSN returns the --db flag, falling back to fallback and then the default path.
func databaseDSN(fallback string) (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return db.DefaultPath()
}

// openDB opens and migrates the database named by the --db flag, then fallback, then the default path.
func openDB(ctx context.Context, fallback string) (*db.DB, error) {
	dsn, err := databaseDSN(fallback)
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, dsn)
}

// newAPIClient creates an HTTP client for the bloggu API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *db.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
