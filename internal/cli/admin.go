package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/app"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/config"
	pgstore "github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/postgres"
)

// NewCreateAdminCmd provisions an administrator account.
func NewCreateAdminCmd(configPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return createAdmin(cmd.Context(), *configPath, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, configPath, email, password string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	access := app.NewAccessService(pgstore.NewAccessRepository(pool), nil, cfg.Auth.BetaCode, []byte(cfg.Auth.JWTSecret), 0, 0, nil)
	admin, err := access.CreateAdmin(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s created (%s)\n", admin.Email, admin.ID)
	return nil
}
