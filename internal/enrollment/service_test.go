// AngelaMos | 2026
// service_test.go

package enrollment

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

type fixture struct {
	service *Service
	courses *course.Service
	users   *user.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := core.OpenJSONDB(filepath.Join(t.TempDir(), "db.json"), nil)
	require.NoError(t, err)

	courses := course.NewService(course.NewJSONRepository(db))
	users := user.NewService(user.NewJSONRepository(db))

	return &fixture{
		service: NewService(NewJSONRepository(db), courses, users),
		courses: courses,
		users:   users,
	}
}

func (f *fixture) course(t *testing.T, title string) *course.Course {
	t.Helper()
	c, err := f.courses.CreateCourse(context.Background(), course.CreateCourseRequest{
		Title:       title,
		Description: "about " + title,
		Instructor:  "Ada",
		Duration:    "3 weeks",
		Level:       course.LevelBeginner,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) user(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), user.CreateUserRequest{
		Name:     "Student",
		Email:    email,
		Password: "secret",
	})
	require.NoError(t, err)
	return u
}

func TestClampProgress(t *testing.T) {
	assert.InDelta(t, 0.0, ClampProgress(-5), 0)
	assert.InDelta(t, 42.5, ClampProgress(42.5), 0)
	assert.InDelta(t, 100.0, ClampProgress(250), 0)
}

func TestEnrollTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@test.com")
	c := f.course(t, "Go")

	e, err := f.service.Enroll(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, e.Progress, 0)
	assert.Nil(t, e.CompletedAt)
	assert.False(t, e.EnrolledAt.IsZero())

	_, err = f.service.Enroll(ctx, u.ID, c.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestUpdateProgressSetsCompletedAtOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.service.Enroll(ctx, "u1", "c1")
	require.NoError(t, err)

	e, err = f.service.UpdateProgress(ctx, e.ID, -10)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, e.Progress, 0)
	assert.Nil(t, e.CompletedAt)

	e, err = f.service.UpdateProgress(ctx, e.ID, 150)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, e.Progress, 0)
	require.NotNil(t, e.CompletedAt)
	first := *e.CompletedAt

	time.Sleep(5 * time.Millisecond)

	e, err = f.service.UpdateProgress(ctx, e.ID, 60)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, e.Progress, 0)
	require.NotNil(t, e.CompletedAt)
	assert.True(t, first.Equal(*e.CompletedAt))

	e, err = f.service.UpdateProgress(ctx, e.ID, 100)
	require.NoError(t, err)
	assert.True(t, first.Equal(*e.CompletedAt))

	stored, err := f.service.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(*stored.CompletedAt))

	_, err = f.service.UpdateProgress(ctx, "missing", 10)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestEnrichJoinsAndNullsDanglingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "b@test.com")
	c := f.course(t, "Rust")

	_, err := f.service.Enroll(ctx, u.ID, c.ID)
	require.NoError(t, err)
	_, err = f.service.Enroll(ctx, u.ID, "deleted-course")
	require.NoError(t, err)
	_, err = f.service.Enroll(ctx, "ghost", c.ID)
	require.NoError(t, err)

	details, total, err := f.service.ListEnrollments(ctx, ListEnrollmentsParams{})
	require.NoError(t, err)
	require.Equal(t, 3, total)

	require.NotNil(t, details[0].Course)
	assert.Equal(t, "Rust", details[0].Course.Title)
	require.NotNil(t, details[0].User)
	assert.Equal(t, UserSummary{ID: u.ID, Name: "Student", Email: "b@test.com", Role: user.RoleUser}, *details[0].User)

	assert.Nil(t, details[1].Course)
	assert.NotNil(t, details[1].User)

	assert.NotNil(t, details[2].Course)
	assert.Nil(t, details[2].User)

	require.NoError(t, f.courses.DeleteCourse(ctx, c.ID))
	detail, err := f.service.GetEnrollmentDetail(ctx, details[0].ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Course)
}
