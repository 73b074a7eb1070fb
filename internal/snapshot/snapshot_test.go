// AngelaMos | 2026
// snapshot_test.go

package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

func TestSnapshotFromJSONStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(dbPath, []byte(`{
		"users": [{"id": "1", "name": "Ana", "email": "a@test.com", "password": "x", "role": "user", "createdAt": "2025-01-01T00:00:00Z"}],
		"courses": [],
		"enrollments": [],
		"profile": {"name": "kept"}
	}`), 0o600))

	db, err := core.OpenJSONDB(dbPath, nil)
	require.NoError(t, err)

	s := New(filepath.Join(dir, "snapshots"), JSONSource(db), nil)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }

	path, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snapshots", "db-1700000000123.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "users")
	assert.Contains(t, doc, "courses")
	assert.Contains(t, doc, "enrollments")
	assert.JSONEq(t, `{"name": "kept"}`, string(doc["profile"]))
}

func TestSnapshotFromSQLRepositories(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(dir, "lms.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	users := user.NewRepository(db.DB)
	courses := course.NewRepository(db.DB)
	enrollments := enrollment.NewRepository(db.DB)

	now := core.Now()
	require.NoError(t, users.Create(ctx, &user.User{
		ID: "u1", Name: "Ana", Email: "a@test.com", Password: "x", Role: user.RoleUser, CreatedAt: now,
	}))
	require.NoError(t, enrollments.Create(ctx, &enrollment.Enrollment{
		ID: "e1", UserID: "u1", CourseID: "c1", EnrolledAt: now,
	}))

	s := New(filepath.Join(dir, "snapshots"), RepositorySource(users, courses, enrollments), nil)
	path, err := s.Snapshot(ctx)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Users       []user.User             `json:"users"`
		Courses     []course.Course         `json:"courses"`
		Enrollments []enrollment.Enrollment `json:"enrollments"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "Ana", doc.Users[0].Name)
	assert.NotNil(t, doc.Courses)
	assert.Empty(t, doc.Courses)
	require.Len(t, doc.Enrollments, 1)
	assert.Nil(t, doc.Enrollments[0].CompletedAt)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(t.TempDir(), func(context.Context) ([]byte, error) { return []byte("{}"), nil }, nil)
	require.Error(t, s.Start("not a schedule"))

	require.NoError(t, s.Start("@every 1h"))
	require.Error(t, s.Start("@every 1h"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	s.Stop(ctx)
}

func TestPingCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	s := New(dir, func(context.Context) ([]byte, error) { return []byte("{}"), nil }, nil)

	require.NoError(t, s.Ping(context.Background()))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
