package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"leadcollector-engine/internal/activity"
	"leadcollector-engine/internal/auth"
	"leadcollector-engine/internal/domain"
	"leadcollector-engine/internal/secrets"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
	roleFlag     = "role"
)

var userFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Account email (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Account password (required)",
	},
	roleFlag: &cobraflags.StringFlag{
		Name:  roleFlag,
		Value: string(domain.RoleUser),
		Usage: "Account role: user or admin",
	},
}

var keyringFlags = map[string]cobraflags.Flag{
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Bootstrap admin password to store in the OS keyring (required)",
	},
}

func newCreateUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a dashboard account without going through the admin console",
		Args:  cobra.NoArgs,
		RunE:  createUserCommand,
	}
	cobraflags.RegisterMap(cmd, storeFlags)
	cobraflags.RegisterMap(cmd, userFlags)
	return cmd
}

func createUserCommand(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	email := flagString(cmd, emailFlag)
	svc := auth.NewService(rt.db, auth.NewSessionStore(rt.cfg.SessionTTL()), activity.New(rt.db, rt.log), rt.log)
	id, err := svc.CreateUser(cmd.Context(), nil, email,
		flagString(cmd, passwordFlag),
		domain.Role(flagString(cmd, roleFlag)),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", id, email)
	return nil
}

func newAdminPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin-password",
		Short: "Manage the bootstrap admin password kept in the OS keyring",
		Long: `The bootstrap admin password is read from the OS keyring when admin.keyring_account
is set in config.yml, falling back to admin.password.`,
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Store the bootstrap admin password in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd, resolveDataDir(cmd))
			if err != nil {
				return err
			}
			if err := secrets.SetAdminPassword(cfg.Admin.KeyringAccount, flagString(cmd, passwordFlag)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored admin password for keyring account %q\n", cfg.Admin.KeyringAccount)
			return nil
		},
	}
	cobraflags.RegisterMap(set, storeFlags)
	cobraflags.RegisterMap(set, keyringFlags)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the bootstrap admin password from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd, resolveDataDir(cmd))
			if err != nil {
				return err
			}
			if err := secrets.DeleteAdminPassword(cfg.Admin.KeyringAccount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed admin password for keyring account %q\n", cfg.Admin.KeyringAccount)
			return nil
		},
	}
	cobraflags.RegisterMap(clearCmd, storeFlags)

	cmd.AddCommand(set, clearCmd)
	return cmd
}
