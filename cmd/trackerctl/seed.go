package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository/postgres"
	"github.com/dom/college-tracker/internal/service"
	"github.com/spf13/cobra"
)

var seedUniversitiesCmd = &cobra.Command{
	Use:   "seed-universities",
	Short: "Import universities from a JSON file",
	Long: `Upsert universities from a JSON array. Rows are matched by name, so the
command can be rerun after editing the file.

Each entry uses the API field names, for example:
  [{"name": "MIT", "country": "USA", "state": "MA", "city": "Cambridge",
    "ranking": 1, "acceptanceRate": 3.9, "applicationSystem": "Direct",
    "majorsOffered": ["Computer Science", "Physics"]}]`,
	RunE: runSeedUniversities,
}

func init() {
	seedUniversitiesCmd.Flags().String("file", "", "path to the universities JSON file")
	seedUniversitiesCmd.MarkFlagRequired("file")
}

func loadUniversities(path string) ([]*domain.University, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var universities []*domain.University
	if err := json.Unmarshal(data, &universities); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return universities, nil
}

func runSeedUniversities(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	universities, err := loadUniversities(path)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	svc := service.NewUniversityService(postgres.NewUniversityRepository(db))
	count, err := svc.Import(cmd.Context(), universities)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d universities\n", count)
	return nil
}
