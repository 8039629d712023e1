package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// errNotLoggedIn is returned by commands that need a stored token
var errNotLoggedIn = errors.New("not logged in; run `taskboard login` first")

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				password = os.Getenv("TASKBOARD_PASSWORD")
			}
			if password == "" {
				printf(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password is required")
			}

			rt, err := app.open()
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.Session.Login(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			printf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default $TASKBOARD_PASSWORD, else prompt)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.open()
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.Session.Logout()
			printf(cmd.OutOrStdout(), "Logged out\n")
			return nil
		},
	}
}
