// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/lms-backend/internal/client"
)

const (
	defaultServer  = "http://localhost:3001"
	requestTimeout = 15 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	out         io.Writer
	server      string
	sessionPath string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "lmsctl",
		Short:         "Command line client for the LMS server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.server, "server", envOr("LMS_SERVER", defaultServer),
		"base URL of the LMS server")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", defaultSessionPath(),
		"file holding the saved login")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.coursesCmd(),
		a.enrollCmd(),
		a.progressCmd(),
		a.dashboardCmd(),
		keysCmd(out),
	)

	return root
}

// client builds an API client carrying the saved token, if any.
func (a *app) client() (*client.Client, *session, error) {
	s, err := loadSession(a.sessionPath)
	if err != nil {
		return nil, nil, err
	}

	opts := []client.Option{client.WithTimeout(requestTimeout)}
	if s.Token != "" && s.Server == a.server {
		opts = append(opts, client.WithToken(s.Token))
	}

	return client.New(a.server, opts...), s, nil
}

// requireLogin is client for commands that make no sense anonymously.
func (a *app) requireLogin() (*client.Client, *session, error) {
	c, s, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	if !c.IsAuthenticated() {
		return nil, nil, fmt.Errorf("not logged in to %s, run lmsctl login first", a.server)
	}
	return c, s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".lmsctl.json"
	}
	return filepath.Join(dir, "lmsctl", "session.json")
}
