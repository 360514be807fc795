package main

import (
	"fmt"

	"github.com/dom/college-tracker/internal/config"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository/postgres"
	"github.com/dom/college-tracker/internal/service"
	"github.com/spf13/cobra"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account and print a bearer token for it",
	Long: `Create an account directly in the database. Needs the same JWT_SECRET and
SESSION_SECRET as the server so the printed token is accepted by it.`,
	RunE: runCreateUser,
}

func init() {
	createUserCmd.Flags().String("email", "", "account email")
	createUserCmd.Flags().String("password", "", "account password")
	createUserCmd.Flags().String("first-name", "", "first name")
	createUserCmd.Flags().String("last-name", "", "last name")
	createUserCmd.Flags().String("role", string(domain.UserRoleStudent), "student, parent, teacher or admin")
	createUserCmd.MarkFlagRequired("email")
	createUserCmd.MarkFlagRequired("password")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.DatabaseURL = databaseURL

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	firstName, _ := cmd.Flags().GetString("first-name")
	lastName, _ := cmd.Flags().GetString("last-name")
	role, _ := cmd.Flags().GetString("role")

	services := service.NewServices(postgres.NewRepositories(db), cfg, nil)
	result, err := services.Auth.Register(cmd.Context(), service.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      domain.UserRole(role),
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s user %s (%s)\n", result.User.Role, result.User.Email, result.User.ID)
	fmt.Fprintf(out, "Bearer token: %s\n", result.Token)
	return nil
}
