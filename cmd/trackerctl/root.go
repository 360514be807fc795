package main

import (
	"github.com/dom/college-tracker/internal/config"
	"github.com/dom/college-tracker/internal/repository/postgres"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "trackerctl",
	Short: "College tracker maintenance CLI",
	Long: `Maintenance commands for the college application tracker.

Examples:
  trackerctl migrate
  trackerctl seed-universities --file universities.json
  trackerctl create-user --email ada@example.com --password s3cretpass --first-name Ada --last-name Lovelace`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", config.DatabaseURL(), "Postgres connection string (defaults to $DATABASE_URL)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedUniversitiesCmd)
	rootCmd.AddCommand(createUserCmd)
}

// openDB connects and migrates the schema.
func openDB() (*gorm.DB, error) {
	return postgres.NewConnection(databaseURL)
}
