package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var adminReq transport.SignupRequest

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a back-office account, or promote an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, logger, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = pkgdb.Close(db) }()

		svc := &service.AuthService{Repo: &repo.GormRepo{DB: db}}
		user, err := svc.CreateAdmin(ctx, adminReq)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		logger.Info("admin_ready", "user_id", user.ID, "email", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVar(&adminReq.Email, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminReq.Password, "password", "", "password for a new account")
	createAdminCmd.Flags().StringVar(&adminReq.FirstName, "first-name", "", "")
	createAdminCmd.Flags().StringVar(&adminReq.LastName, "last-name", "", "")
	_ = createAdminCmd.MarkFlagRequired("email")
}
