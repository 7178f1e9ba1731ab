package main

import (
	"context"
	"fmt"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/config"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/service"
	"github.com/siamakdehbokri-hub/siaflowtest/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// currentUserID returns the configured user identity, empty when none
// is set. Materialization treats an empty identity as a no-op.
func currentUserID() string {
	return viper.GetString("user.id")
}

// confirm prompts for a yes/no answer unless force is set.
func confirm(prompt string, force bool) bool {
	if force {
		return true
	}
	fmt.Printf("%s (y/N): ", prompt)
	var response string
	_, _ = fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Printf("Database schema is at version %d.\n", storage.ExpectedSchemaVersion)
			return nil
		},
	}
}
