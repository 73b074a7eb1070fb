// AngelaMos | 2026
// courses.go

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/lms-backend/internal/client"
)

func (a *app) coursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Browse the course catalog",
	}
	cmd.AddCommand(a.coursesListCmd(), a.coursesGetCmd())
	return cmd
}

func (a *app) coursesListCmd() *cobra.Command {
	var filter client.CourseFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}

			courses, total, err := c.Courses.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			writeCourses(a.out, courses)
			if filter.Page > 0 {
				fmt.Fprintf(a.out, "\npage %d, %d of %d courses\n", filter.Page, len(courses), total)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&filter.Query, "search", "q", "", "match title, instructor or tag")
	f.StringVar(&filter.Level, "level", "", "Beginner, Intermediate or Advanced")
	f.StringVar(&filter.Status, "status", "", "Published or Draft")
	f.StringVar(&filter.Tag, "tag", "", "exact tag")
	f.IntVar(&filter.Page, "page", 0, "page number, 0 lists everything")
	f.IntVar(&filter.Limit, "limit", 10, "page size when --page is set")
	f.StringVar(&filter.Sort, "sort", "", "title, createdAt, updatedAt or students")
	f.StringVar(&filter.Order, "order", "", "asc or desc")

	return cmd
}

func (a *app) coursesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get COURSE_ID",
		Short: "Show one course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}

			course, err := c.Courses.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\t%s\n", course.ID)
			fmt.Fprintf(tw, "Title\t%s\n", course.Title)
			fmt.Fprintf(tw, "Instructor\t%s\n", course.Instructor)
			fmt.Fprintf(tw, "Level\t%s\n", course.Level)
			fmt.Fprintf(tw, "Duration\t%s\n", course.Duration)
			fmt.Fprintf(tw, "Status\t%s\n", course.Status)
			fmt.Fprintf(tw, "Students\t%d\n", course.Students)
			fmt.Fprintf(tw, "Tags\t%s\n", strings.Join(course.Tags, ", "))
			fmt.Fprintf(tw, "Description\t%s\n", course.Description)
			return tw.Flush()
		},
	}
}

func writeCourses(w io.Writer, courses []client.Course) {
	if len(courses) == 0 {
		fmt.Fprintln(w, "No courses found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tINSTRUCTOR\tLEVEL\tSTATUS\tSTUDENTS")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			c.ID, c.Title, c.Instructor, c.Level, c.Status, c.Students)
	}
	_ = tw.Flush()
}
