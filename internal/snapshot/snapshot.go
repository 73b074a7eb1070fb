// AngelaMos | 2026
// snapshot.go

package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

// Source produces a complete db.json document.
type Source func(ctx context.Context) ([]byte, error)

// JSONSource exports the live JSON store as is, unknown top-level keys
// included.
func JSONSource(db *core.JSONDB) Source {
	return func(_ context.Context) ([]byte, error) {
		return db.Export()
	}
}

// RepositorySource rebuilds the db.json layout from the SQL repositories.
func RepositorySource(
	users user.Repository,
	courses course.Repository,
	enrollments enrollment.Repository,
) Source {
	return func(ctx context.Context) ([]byte, error) {
		u, _, err := users.List(ctx, user.ListUsersParams{})
		if err != nil {
			return nil, fmt.Errorf("export users: %w", err)
		}

		c, _, err := courses.List(ctx, course.ListCoursesParams{})
		if err != nil {
			return nil, fmt.Errorf("export courses: %w", err)
		}

		e, _, err := enrollments.List(ctx, enrollment.ListEnrollmentsParams{})
		if err != nil {
			return nil, fmt.Errorf("export enrollments: %w", err)
		}

		doc := struct {
			Users       []user.User             `json:"users"`
			Courses     []course.Course         `json:"courses"`
			Enrollments []enrollment.Enrollment `json:"enrollments"`
		}{
			Users:       nonNil(u),
			Courses:     nonNil(c),
			Enrollments: nonNil(e),
		}

		return json.MarshalIndent(doc, "", "  ")
	}
}

type Snapshotter struct {
	dir    string
	source Source
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func New(dir string, source Source, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshotter{
		dir:    dir,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot writes the current state to <dir>/db-<unixMillis>.json and
// returns the file path.
func (s *Snapshotter) Snapshot(ctx context.Context) (string, error) {
	data, err := s.source(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("snapshot: create dir: %w", err)
	}

	name := "db-" + strconv.FormatInt(s.now().UnixMilli(), 10) + ".json"
	path := filepath.Join(s.dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("snapshot: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("snapshot: rename: %w", err)
	}

	s.logger.Info("snapshot written", "path", path, "bytes", len(data))
	return path, nil
}

// Start runs Snapshot on a standard five-field cron schedule until Stop.
func (s *Snapshotter) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("snapshot scheduler already started")
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Snapshot(context.Background()); err != nil {
			s.logger.Error("scheduled snapshot failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse snapshot schedule %q: %w", schedule, err)
	}

	c.Start()
	s.cron = c

	s.logger.Info("snapshot scheduler started",
		"schedule", schedule,
		"dir", s.dir,
	)
	return nil
}

// Stop halts the scheduler and waits for a running snapshot, bounded by
// ctx.
func (s *Snapshotter) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// Ping reports whether the snapshot directory can be created and written.
func (s *Snapshotter) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}

	f, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("snapshot dir not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()

	return os.Remove(name)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
