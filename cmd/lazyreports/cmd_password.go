package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyreports/internal/db/connection"
	"github.com/spf13/cobra"
)

func newPasswordCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the database password in the OS keyring",
		Long: `The password is stored under the configured user, host and database.
It is used when database.use_keyring is true and database.password is empty.`,
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Read a password from stdin and store it in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", opts.cfg.Database.KeyringUser())

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}

			if err := connection.StorePassword(opts.cfg.Database.ConnectionConfig, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nStored password for %s\n", opts.cfg.Database.KeyringUser())
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm",
		Short: "Remove the password from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connection.DeletePassword(opts.cfg.Database.ConnectionConfig); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed password for %s\n", opts.cfg.Database.KeyringUser())
			return nil
		},
	}

	cmd.AddCommand(setCmd, rmCmd)
	return cmd
}
