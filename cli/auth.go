package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kishan-kumar001/mern-task-manager/client"
	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/session"
)

const requestTimeout = 30 * time.Second

func credentialFlags(cmd *cobra.Command, creds *models.Credentials) {
	cmd.Flags().StringVar(&creds.Username, "username", "", "Account username")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password (default $TASKMAN_PASSWORD)")
	cmd.MarkFlagRequired("username")
}

func resolvePassword(creds *models.Credentials) error {
	if creds.Password == "" {
		creds.Password = os.Getenv("TASKMAN_PASSWORD")
	}
	if creds.Password == "" {
		return errors.New("password is required: pass --password or set TASKMAN_PASSWORD")
	}
	return nil
}

func apiError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	return err
}

func newRegisterCmd(app *App) *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolvePassword(&creds); err != nil {
				return err
			}
			c, _, err := app.clientSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if err := c.Register(ctx, creds); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", creds.Username)
			return nil
		},
	}
	credentialFlags(cmd, &creds)
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolvePassword(&creds); err != nil {
				return err
			}
			c, sess, err := app.clientSession()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			resp, err := c.Login(ctx, creds)
			if err != nil {
				return apiError(err)
			}
			if err := sess.Set(session.TokenKey, resp.Token); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.Username)
			return nil
		},
	}
	credentialFlags(cmd, &creds)
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sess, err := app.clientSession()
			if err != nil {
				return err
			}
			if sess.Get(session.TokenKey) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if err := c.Logout(ctx); err != nil && !client.IsUnauthorized(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", apiError(err))
			}
			if err := sess.Remove(session.TokenKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
