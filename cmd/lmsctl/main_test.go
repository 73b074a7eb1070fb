// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/lms-backend/internal/admin"
	"github.com/carterperez-dev/templates/lms-backend/internal/auth"
	"github.com/carterperez-dev/templates/lms-backend/internal/client"
	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

type harness struct {
	server  string
	session string
	courses *course.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := core.OpenJSONDB(filepath.Join(dir, "db.json"), nil)
	require.NoError(t, err)

	userSvc := user.NewService(user.NewJSONRepository(db))
	courseSvc := course.NewService(course.NewJSONRepository(db))
	enrollmentSvc := enrollment.NewService(enrollment.NewJSONRepository(db), courseSvc, userSvc)

	authSvc := auth.NewService(auth.NewMockTokens(0), userSvc, nil)
	require.NoError(t, authSvc.SeedAdmin(ctx, config.SeedConfig{
		AdminName:     "Admin",
		AdminEmail:    "admin@lms.test",
		AdminPassword: "admin123",
	}))

	requireAuth := middleware.Authenticator(authSvc)
	r := chi.NewRouter()
	auth.NewHandler(authSvc).RegisterRoutes(r, requireAuth, nil)
	course.NewHandler(courseSvc).RegisterRoutes(r, requireAuth, middleware.RequireAdmin)
	enrollment.NewHandler(enrollmentSvc, true).RegisterRoutes(r, requireAuth)
	admin.NewHandler(admin.HandlerConfig{
		Users:       userSvc,
		Courses:     courseSvc,
		Enrollments: enrollmentSvc,
	}).RegisterRoutes(r, requireAuth, middleware.RequireAdmin)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &harness{
		server:  srv.URL,
		session: filepath.Join(dir, "cli", "session.json"),
		courses: courseSvc,
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--server", h.server, "--session", h.session}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStudentWorkflow(t *testing.T) {
	h := newHarness(t)

	created, err := h.courses.CreateCourse(context.Background(), course.CreateCourseRequest{
		Title:       "Concurrency in Go",
		Description: "Channels and goroutines",
		Instructor:  "Rob",
		Duration:    "4 weeks",
		Level:       "Intermediate",
		Status:      course.StatusPublished,
		Tags:        []string{"go"},
	})
	require.NoError(t, err)

	_, err = h.run(t, "dashboard")
	require.ErrorContains(t, err, "not logged in")

	out, err := h.run(t, "register", "--name", "Pat", "--email", "pat@lms.test", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Pat (user)")

	saved, err := loadSession(h.session)
	require.NoError(t, err)
	assert.Equal(t, h.server, saved.Server)
	assert.NotEmpty(t, saved.Token)

	out, err = h.run(t, "courses", "list", "-q", "concurrency")
	require.NoError(t, err)
	assert.Contains(t, out, "Concurrency in Go")

	out, err = h.run(t, "courses", "list", "--tag", "rust")
	require.NoError(t, err)
	assert.Contains(t, out, "No courses found")

	out, err = h.run(t, "enroll", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Enrolled: ")

	out, err = h.run(t, "enroll", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Already enrolled in this course")

	out, err = h.run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Courses for Pat")
	assert.Contains(t, out, "0 of 1 completed")

	enrollments, _, err := loadEnrollmentIDs(t, h)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)

	out, err = h.run(t, "progress", enrollments[0], "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress: 100%")
	assert.Contains(t, out, "Completed: ")

	_, err = h.run(t, "progress", enrollments[0], "lots")
	require.ErrorContains(t, err, "progress must be a number")

	out, err = h.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = os.Stat(h.session)
	assert.True(t, os.IsNotExist(err))
}

func TestAdminDashboardShowsStats(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "login", "--email", "admin@lms.test", "--password", "wrong")
	require.EqualError(t, err, "Invalid credentials")

	_, err = h.run(t, "login", "--email", "admin@lms.test", "--password", "admin123")
	require.NoError(t, err)

	out, err := h.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Admin <admin@lms.test> (admin)")

	out, err = h.run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 admins, 0 students)")
	assert.Contains(t, out, "Completion rate")
}

func TestKeysGenerate(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "keys", "private.pem")
	pub := filepath.Join(dir, "keys", "public.pem")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"keys", "generate", "--private", priv, "--public", pub})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, priv)
	assert.FileExists(t, pub)
}

// loadEnrollmentIDs reads the caller's enrollments through the saved
// session, the way the dashboard does.
func loadEnrollmentIDs(t *testing.T, h *harness) ([]string, int, error) {
	t.Helper()
	a := &app{server: h.server, sessionPath: h.session}
	c, s, err := a.requireLogin()
	if err != nil {
		return nil, 0, err
	}

	items, total, err := c.Enrollments.List(context.Background(), client.EnrollmentFilter{UserID: s.User.ID})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.ID)
	}
	return ids, total, nil
}
