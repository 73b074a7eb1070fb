// AngelaMos | 2026
// auth.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/lms-backend/internal/client"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}

			resp, err := c.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.remember(resp)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a student account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}

			resp, err := c.Auth.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			return a.remember(resp)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the saved token and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}

			logoutErr := c.Auth.Logout(cmd.Context())
			if err := clearSession(a.sessionPath); err != nil {
				return err
			}
			if logoutErr != nil {
				return fmt.Errorf("session cleared locally, server logout failed: %w", logoutErr)
			}

			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.requireLogin()
			if err != nil {
				return err
			}

			me, err := c.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s <%s> (%s)\n", me.Name, me.Email, me.Role)
			return nil
		},
	}
}

func (a *app) remember(resp *client.AuthResponse) error {
	user := resp.User
	if err := saveSession(a.sessionPath, &session{
		Server: a.server,
		Token:  resp.Token,
		User:   &user,
	}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}
