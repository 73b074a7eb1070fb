// AngelaMos | 2026
// repository_json.go

package enrollment

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type jsonRepository struct {
	db *core.JSONDB
}

func NewJSONRepository(db *core.JSONDB) Repository {
	return &jsonRepository{db: db}
}

// Create checks for an existing (userId, courseId) pair and appends inside
// a single write transaction, so the check and the insert cannot
// interleave with another enroll.
func (r *jsonRepository) Create(_ context.Context, e *Enrollment) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		enrollments, err := core.Decode[Enrollment](tx, core.CollectionEnrollments)
		if err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}

		for _, existing := range enrollments {
			if existing.ID == e.ID {
				return fmt.Errorf("create enrollment: %w", core.ErrDuplicateKey)
			}
			if existing.UserID == e.UserID && existing.CourseID == e.CourseID {
				return fmt.Errorf("create enrollment: %w", ErrAlreadyEnrolled)
			}
		}

		return core.Encode(tx, core.CollectionEnrollments, append(enrollments, *e))
	})
}

func (r *jsonRepository) GetByID(_ context.Context, id string) (*Enrollment, error) {
	var found *Enrollment
	err := r.db.View(func(tx *core.JSONTx) error {
		enrollments, err := core.Decode[Enrollment](tx, core.CollectionEnrollments)
		if err != nil {
			return err
		}
		if i := indexByID(enrollments, id); i >= 0 {
			found = &enrollments[i]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("get enrollment: %w", core.ErrNotFound)
	}

	return found, nil
}

func (r *jsonRepository) SetProgress(
	_ context.Context,
	id string,
	progress float64,
	now time.Time,
) (*Enrollment, error) {
	var updated Enrollment
	err := r.db.Update(func(tx *core.JSONTx) error {
		enrollments, err := core.Decode[Enrollment](tx, core.CollectionEnrollments)
		if err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		idx := indexByID(enrollments, id)
		if idx < 0 {
			return fmt.Errorf("update progress: %w", core.ErrNotFound)
		}

		enrollments[idx].SetProgress(progress, now)
		updated = enrollments[idx]
		return core.Encode(tx, core.CollectionEnrollments, enrollments)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *jsonRepository) Delete(_ context.Context, id string) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		enrollments, err := core.Decode[Enrollment](tx, core.CollectionEnrollments)
		if err != nil {
			return fmt.Errorf("delete enrollment: %w", err)
		}

		idx := indexByID(enrollments, id)
		if idx < 0 {
			return fmt.Errorf("delete enrollment: %w", core.ErrNotFound)
		}

		return core.Encode(
			tx,
			core.CollectionEnrollments,
			slices.Delete(enrollments, idx, idx+1),
		)
	})
}

func (r *jsonRepository) List(
	_ context.Context,
	params ListEnrollmentsParams,
) ([]Enrollment, int, error) {
	var matched []Enrollment
	err := r.db.View(func(tx *core.JSONTx) error {
		enrollments, err := core.Decode[Enrollment](tx, core.CollectionEnrollments)
		if err != nil {
			return err
		}
		for _, e := range enrollments {
			if matches(&e, params) {
				matched = append(matched, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	sortEnrollments(matched, params.Sort, params.Descending())

	return core.Page(matched, params.ListParams), len(matched), nil
}

func (r *jsonRepository) Stats(_ context.Context) (Stats, error) {
	var stats Stats
	err := r.db.View(func(tx *core.JSONTx) error {
		enrollments, err := core.Decode[Enrollment](tx, core.CollectionEnrollments)
		if err != nil {
			return err
		}

		var sum float64
		for _, e := range enrollments {
			stats.Total++
			sum += e.Progress
			if e.IsCompleted() {
				stats.Completed++
			}
		}
		if stats.Total > 0 {
			stats.AverageProgress = sum / float64(stats.Total)
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("enrollment stats: %w", err)
	}

	return stats, nil
}

func matches(e *Enrollment, params ListEnrollmentsParams) bool {
	if params.UserID != "" && e.UserID != params.UserID {
		return false
	}
	if params.CourseID != "" && e.CourseID != params.CourseID {
		return false
	}
	if params.Completed != nil && e.IsCompleted() != *params.Completed {
		return false
	}
	return true
}

func indexByID(enrollments []Enrollment, id string) int {
	return slices.IndexFunc(enrollments, func(e Enrollment) bool { return e.ID == id })
}

func sortEnrollments(enrollments []Enrollment, field string, desc bool) {
	var less func(a, b Enrollment) int
	switch field {
	case "enrolledAt":
		less = func(a, b Enrollment) int { return a.EnrolledAt.Compare(b.EnrolledAt) }
	case "progress":
		less = func(a, b Enrollment) int { return cmp.Compare(a.Progress, b.Progress) }
	default:
		return
	}

	slices.SortStableFunc(enrollments, func(a, b Enrollment) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}
