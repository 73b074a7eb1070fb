// AngelaMos | 2026
// client_test.go

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/lms-backend/internal/admin"
	"github.com/carterperez-dev/templates/lms-backend/internal/auth"
	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

const (
	adminEmail    = "admin@lms.test"
	adminPassword = "admin123"
)

// newServer runs the real handlers over a temp JSON database with auth
// enforced and a seeded admin.
func newServer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	db, err := core.OpenJSONDB(filepath.Join(t.TempDir(), "db.json"), nil)
	require.NoError(t, err)

	userSvc := user.NewService(user.NewJSONRepository(db))
	courseSvc := course.NewService(course.NewJSONRepository(db))
	enrollmentSvc := enrollment.NewService(enrollment.NewJSONRepository(db), courseSvc, userSvc)

	authSvc := auth.NewService(auth.NewMockTokens(0), userSvc, nil)
	require.NoError(t, authSvc.SeedAdmin(ctx, config.SeedConfig{
		AdminName:     "Admin",
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}))

	requireAuth := middleware.Authenticator(authSvc)

	r := chi.NewRouter()
	auth.NewHandler(authSvc).RegisterRoutes(r, requireAuth, nil)
	user.NewHandler(userSvc).RegisterRoutes(r, requireAuth, middleware.RequireAdmin)
	course.NewHandler(courseSvc).RegisterRoutes(r, requireAuth, middleware.RequireAdmin)
	enrollment.NewHandler(enrollmentSvc, true).RegisterRoutes(r, requireAuth)
	admin.NewHandler(admin.HandlerConfig{
		Users:       userSvc,
		Courses:     courseSvc,
		Enrollments: enrollmentSvc,
	}).RegisterRoutes(r, requireAuth, middleware.RequireAdmin)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func loginAdmin(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := New(baseURL)
	_, err := c.Auth.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return c
}

func TestAuthSession(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t))

	_, err := c.Auth.Me(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	resp, err := c.Auth.Register(ctx, "Sam", "sam@lms.test", "pw")
	require.NoError(t, err)
	assert.Contains(t, resp.Token, "mock-jwt-token-")
	assert.Equal(t, resp.Token, c.Token())
	require.NotNil(t, c.CurrentUser())
	assert.Equal(t, RoleUser, c.CurrentUser().Role)

	me, err := c.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sam@lms.test", me.Email)

	_, err = c.Auth.Register(ctx, "Sam", "sam@lms.test", "pw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Email already exists", apiErr.Message)

	require.NoError(t, c.Auth.Logout(ctx))
	assert.False(t, c.IsAuthenticated())
	assert.Nil(t, c.CurrentUser())

	_, err = c.Auth.Login(ctx, "sam@lms.test", "wrong")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Error())

	_, _, err = c.Courses.List(ctx, CourseFilter{})
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestCourseCacheRefreshesAfterMutations(t *testing.T) {
	ctx := context.Background()
	c := loginAdmin(t, newServer(t))
	cache := NewCourseCache(c, CourseFilter{})

	require.NoError(t, cache.Refresh(ctx))
	assert.Empty(t, cache.Items())
	assert.False(t, cache.Loading())

	created, err := cache.Create(ctx, CourseInput{
		Title:       "Intro to Go",
		Description: "Types, interfaces, goroutines",
		Instructor:  "Ada",
		Duration:    "8 weeks",
		Level:       "Beginner",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, created.Status)
	assert.Equal(t, []string{}, created.Tags)
	require.Len(t, cache.Items(), 1)

	published := StatusPublished
	_, err = cache.Update(ctx, created.ID, CourseUpdate{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, cache.Items()[0].Status)

	_, err = cache.Create(ctx, CourseInput{Title: "missing fields"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(cache.Err()))
	assert.Len(t, cache.Items(), 1)

	found, total, err := c.Courses.List(ctx, CourseFilter{ListOptions: ListOptions{Query: "intro", Page: 1, Limit: 5}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)

	require.NoError(t, cache.Delete(ctx, created.ID))
	assert.Empty(t, cache.Items())
	assert.NoError(t, cache.Err())

	_, err = c.Courses.Get(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Course not found", apiErr.Message)
}

func TestUserCacheAndStats(t *testing.T) {
	ctx := context.Background()
	c := loginAdmin(t, newServer(t))
	cache := NewUserCache(c, UserFilter{})

	created, err := cache.Create(ctx, UserInput{Name: "Lee", Email: "lee@lms.test", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, created.Role)
	assert.Len(t, cache.Items(), 2)

	stats, err := c.Admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.Admins)

	require.NoError(t, cache.Delete(ctx, created.ID))
	assert.Len(t, cache.Items(), 1)
}

func TestEnrollmentCacheFlow(t *testing.T) {
	ctx := context.Background()
	baseURL := newServer(t)

	adminClient := loginAdmin(t, baseURL)
	courseA, err := adminClient.Courses.Create(ctx, CourseInput{
		Title: "Go", Description: "d", Instructor: "i", Duration: "1w", Level: "Beginner",
	})
	require.NoError(t, err)

	student := New(baseURL)
	reg, err := student.Auth.Register(ctx, "Kim", "kim@lms.test", "pw")
	require.NoError(t, err)
	studentID := reg.User.ID

	cache := NewEnrollmentCache(student, studentID)
	require.NoError(t, cache.Refresh(ctx))
	assert.False(t, cache.IsEnrolled(studentID, courseA.ID))

	enrolled, err := cache.Enroll(ctx, studentID, courseA.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, enrolled.Progress, 0)
	require.True(t, cache.IsEnrolled(studentID, courseA.ID))
	require.NotNil(t, cache.Find(studentID, courseA.ID).Course)

	_, err = cache.Enroll(ctx, studentID, courseA.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.ErrorIs(t, cache.Err(), ErrAlreadyEnrolled)

	updated, err := cache.UpdateProgress(ctx, enrolled.ID, 150)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, updated.Progress, 0)
	require.NotNil(t, updated.CompletedAt)

	local := cache.Find(studentID, courseA.ID)
	require.NotNil(t, local)
	assert.InDelta(t, 100.0, local.Progress, 0)
	assert.NotNil(t, local.CompletedAt)
	assert.NotNil(t, local.Course)

	byCourse, err := adminClient.Enrollments.ListByCourse(ctx, courseA.ID)
	require.NoError(t, err)
	require.Len(t, byCourse, 1)
	assert.Equal(t, studentID, byCourse[0].UserID)

	_, err = student.Enrollments.Enroll(ctx, "someone-else", courseA.ID)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))

	require.NoError(t, cache.Unenroll(ctx, enrolled.ID))
	assert.False(t, cache.IsEnrolled(studentID, courseA.ID))
	assert.Empty(t, cache.Items())
}

func TestUnscopedEnrollmentCacheMatchesUserAndCourse(t *testing.T) {
	ctx := context.Background()
	baseURL := newServer(t)

	adminClient := loginAdmin(t, baseURL)
	sqlCourse, err := adminClient.Courses.Create(ctx, CourseInput{
		Title: "SQL", Description: "d", Instructor: "i", Duration: "2w", Level: "Beginner",
	})
	require.NoError(t, err)

	first, err := New(baseURL).Auth.Register(ctx, "Ari", "ari@lms.test", "pw")
	require.NoError(t, err)
	second, err := New(baseURL).Auth.Register(ctx, "Bo", "bo@lms.test", "pw")
	require.NoError(t, err)

	cache := NewEnrollmentCache(adminClient, "")
	_, err = cache.Enroll(ctx, first.User.ID, sqlCourse.ID)
	require.NoError(t, err)

	assert.True(t, cache.IsEnrolled(first.User.ID, sqlCourse.ID))
	assert.False(t, cache.IsEnrolled(second.User.ID, sqlCourse.ID))
	assert.Nil(t, cache.Find(second.User.ID, sqlCourse.ID))

	_, err = cache.Enroll(ctx, second.User.ID, sqlCourse.ID)
	require.NoError(t, err)
	assert.True(t, cache.IsEnrolled(second.User.ID, sqlCourse.ID))
	assert.Equal(t, second.User.ID, cache.Find(second.User.ID, sqlCourse.ID).UserID)
	assert.Len(t, cache.Items(), 2)
}

func TestEnrollMapsServerConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Already enrolled in this course","code":"DUPLICATE"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Enrollments.Enroll(context.Background(), "u1", "c1")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestAPIErrorDefaultsMessage(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("mock-jwt-token-1-1"))
	_, err := c.Users.Get(context.Background(), "1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "An error occurred", apiErr.Message)
	assert.Equal(t, "Bearer mock-jwt-token-1-1", gotAuth)
}

func TestUpdateProgressClampsBeforeSending(t *testing.T) {
	var sent map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/enrollments/e1/progress", r.URL.Path)
		require.NoError(t, decodeJSON(r, &sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"e1","progress":0,"completedAt":null}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Enrollments.UpdateProgress(context.Background(), "e1", -20)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sent["progress"], 0)
}
