// AngelaMos | 2026
// repository.go

package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, e *Enrollment) error
	GetByID(ctx context.Context, id string) (*Enrollment, error)
	// SetProgress clamps progress and stamps completedAt with now the first
	// time it reaches 100, as one atomic step.
	SetProgress(ctx context.Context, id string, progress float64, now time.Time) (*Enrollment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListEnrollmentsParams) ([]Enrollment, int, error)
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const enrollmentColumns = `id, user_id, course_id, progress, enrolled_at, completed_at`

var sortColumns = map[string]string{
	"enrolledAt": "enrolled_at",
	"progress":   "progress",
}

// Create relies on the unique (user_id, course_id) index so that two
// concurrent enrolls for the same pair cannot both succeed.
func (r *repository) Create(ctx context.Context, e *Enrollment) error {
	query := r.db.Rebind(`
		INSERT INTO enrollments (` + enrollmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.CourseID,
		e.Progress,
		e.EnrolledAt,
		e.CompletedAt,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create enrollment: %w", ErrAlreadyEnrolled)
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Enrollment, error) {
	query := r.db.Rebind(`SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = ?`)

	var e Enrollment
	err := r.db.GetContext(ctx, &e, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get enrollment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	return &e, nil
}

func (r *repository) SetProgress(
	ctx context.Context,
	id string,
	progress float64,
	now time.Time,
) (*Enrollment, error) {
	progress = ClampProgress(progress)
	var completedAt *time.Time
	if progress >= MaxProgress {
		completedAt = &now
	}

	query := r.db.Rebind(`
		UPDATE enrollments
		SET progress = ?, completed_at = COALESCE(completed_at, ?)
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, progress, completedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	if err := core.RequireRow(result, "update progress"); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM enrollments WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}

	return core.RequireRow(result, "delete enrollment")
}

func (r *repository) List(
	ctx context.Context,
	params ListEnrollmentsParams,
) ([]Enrollment, int, error) {
	var conditions []string
	var args []any

	if params.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, params.UserID)
	}

	if params.CourseID != "" {
		conditions = append(conditions, "course_id = ?")
		args = append(args, params.CourseID)
	}

	if params.Completed != nil {
		if *params.Completed {
			conditions = append(conditions, "completed_at IS NOT NULL")
		} else {
			conditions = append(conditions, "completed_at IS NULL")
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM enrollments " + whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	orderBy := "enrolled_at ASC, id ASC"
	if col, ok := sortColumns[params.Sort]; ok {
		dir := "ASC"
		if params.Descending() {
			dir = "DESC"
		}
		orderBy = col + " " + dir + ", id ASC"
	}

	query := "SELECT " + enrollmentColumns + " FROM enrollments " + whereClause +
		" ORDER BY " + orderBy
	if params.Paginated() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, params.Limit, params.Offset())
	}

	var enrollments []Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	return enrollments, total, nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var row struct {
		Total     int     `db:"total"`
		Completed int     `db:"completed"`
		Average   float64 `db:"average"`
	}

	err := r.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total,
		       COUNT(completed_at) AS completed,
		       COALESCE(AVG(progress), 0) AS average
		FROM enrollments`)
	if err != nil {
		return Stats{}, fmt.Errorf("enrollment stats: %w", err)
	}

	return Stats{
		Total:           row.Total,
		Completed:       row.Completed,
		AverageProgress: row.Average,
	}, nil
}
