// AngelaMos | 2026
// enroll.go

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/lms-backend/internal/client"
)

func (a *app) enrollCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "enroll COURSE_ID",
		Short: "Enroll yourself, or --user as an admin, in a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, s, err := a.requireLogin()
			if err != nil {
				return err
			}

			if userID == "" {
				me, err := currentUser(cmd.Context(), c, s)
				if err != nil {
					return err
				}
				userID = me.ID
			}

			e, err := c.Enrollments.Enroll(cmd.Context(), userID, args[0])
			if errors.Is(err, client.ErrAlreadyEnrolled) {
				fmt.Fprintln(a.out, client.ErrAlreadyEnrolled.Error())
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Enrolled: %s\n", e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user to enroll, defaults to yourself")
	return cmd
}

func (a *app) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress ENROLLMENT_ID PERCENT",
		Short: "Set progress on an enrollment, 100 completes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("progress must be a number: %w", err)
			}

			c, _, err := a.requireLogin()
			if err != nil {
				return err
			}

			e, err := c.Enrollments.UpdateProgress(cmd.Context(), args[0], progress)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Progress: %s%%\n", formatPercent(e.Progress))
			if e.IsCompleted() {
				fmt.Fprintf(a.out, "Completed: %s\n", e.CompletedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

// currentUser prefers the user saved at login and asks the server only
// when the session predates it.
func currentUser(ctx context.Context, c *client.Client, s *session) (*client.User, error) {
	if s.User != nil && s.User.ID != "" {
		return s.User, nil
	}
	return c.Auth.Me(ctx)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
