package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/yanxue-backend/internal/app"
	"github.com/yungbote/yanxue-backend/internal/data/repos"
	"github.com/yungbote/yanxue-backend/internal/services"
)

func newCreateTestUserCmd() *cobra.Command {
	var acct services.TestAccount
	cmd := &cobra.Command{
		Use:   "create-test-user",
		Short: "Create or refresh the configured test account in the database",
		Long: `Upserts a user from TEST_EMAIL, TEST_PASSWORD, TEST_USERNAME and TEST_ROLE.
Flags override the environment. The password is stored as a bcrypt hash.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			mergeTestAccount(&acct, cfg.TestAccount)
			if !acct.Enabled() {
				return fmt.Errorf("test account needs an email and a password (TEST_EMAIL, TEST_PASSWORD)")
			}

			log, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, err := app.OpenDB(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			users := services.NewUserService(log, repos.NewUserRepo(svc.DB(), log))
			u, err := users.UpsertTestAccount(cmd.Context(), acct)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "test user ready: %s <%s> role=%s id=%s\n", u.Username, u.Email, u.Role, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&acct.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&acct.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&acct.Username, "username", "", "Account username")
	cmd.Flags().StringVar(&acct.Role, "role", "", "Account role (admin, teacher, student)")
	return cmd
}

// mergeTestAccount fills unset fields of dst from the configured account.
func mergeTestAccount(dst *services.TestAccount, cfg services.TestAccount) {
	if dst.Email == "" {
		dst.Email = cfg.Email
	}
	if dst.Password == "" {
		dst.Password = cfg.Password
	}
	if dst.Username == "" {
		dst.Username = cfg.Username
	}
	if dst.Role == "" {
		dst.Role = cfg.Role
	}
}
