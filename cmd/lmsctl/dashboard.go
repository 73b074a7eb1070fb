// AngelaMos | 2026
// dashboard.go

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/lms-backend/internal/client"
)

// dashboardCmd shows platform totals to admins and the caller's own
// enrollments to everyone else.
func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your courses, or platform stats for admins",
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

			if me.IsAdmin() {
				stats, err := c.Admin.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return a.writeStats(stats)
			}

			cache := client.NewEnrollmentCache(c, me.ID)
			if err := cache.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.writeEnrollments(me, cache.Items())
		},
	}
}

func (a *app) writeStats(s *client.PlatformStats) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Users\t%d\t(%d admins, %d students)\n", s.Users, s.Admins, s.Students)
	fmt.Fprintf(tw, "Courses\t%d\t(%d published, %d draft)\n", s.Courses, s.PublishedCourses, s.DraftCourses)
	fmt.Fprintf(tw, "Enrollments\t%d\t(%d completed)\n", s.Enrollments, s.CompletedEnrollments)
	fmt.Fprintf(tw, "Average progress\t%s%%\t\n", formatPercent(s.AverageProgress))
	fmt.Fprintf(tw, "Completion rate\t%s%%\t\n", formatPercent(s.CompletionRate))
	return tw.Flush()
}

func (a *app) writeEnrollments(me *client.User, items []client.Enrollment) error {
	fmt.Fprintf(a.out, "Courses for %s\n\n", me.Name)
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Not enrolled in any course")
		return nil
	}

	var completed int
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENROLLMENT\tCOURSE\tPROGRESS\tSTATUS")
	for _, e := range items {
		title := "(course removed)"
		if e.Course != nil {
			title = e.Course.Title
		}

		status := "In progress"
		if e.IsCompleted() {
			status = "Completed"
			completed++
		}

		fmt.Fprintf(tw, "%s\t%s\t%s%%\t%s\n", e.ID, title, formatPercent(e.Progress), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%d of %d completed\n", completed, len(items))
	return nil
}
