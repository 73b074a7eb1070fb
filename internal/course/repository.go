// AngelaMos | 2026
// repository.go

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id string) (*Course, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Course, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListCoursesParams) ([]Course, int, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const courseColumns = `id, title, description, instructor, duration, level,
	status, tags, thumbnail, students, created_at, updated_at`

var sortColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"students":  "students",
}

func (r *repository) Create(ctx context.Context, c *Course) error {
	query := r.db.Rebind(`
		INSERT INTO courses (` + courseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		c.Instructor,
		c.Duration,
		c.Level,
		c.Status,
		c.Tags,
		c.Thumbnail,
		c.Students,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create course: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Course, error) {
	query := r.db.Rebind(`SELECT ` + courseColumns + ` FROM courses WHERE id = ?`)

	var c Course
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	return &c, nil
}

func (r *repository) GetByIDs(
	ctx context.Context,
	ids []string,
) (map[string]*Course, error) {
	out := make(map[string]*Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := r.db.Rebind(
		`SELECT ` + courseColumns + ` FROM courses WHERE id IN (` + placeholders + `)`,
	)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	var courses []Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("get courses by id: %w", err)
	}

	for i := range courses {
		out[courses[i].ID] = &courses[i]
	}

	return out, nil
}

func (r *repository) Update(ctx context.Context, c *Course) error {
	query := r.db.Rebind(`
		UPDATE courses
		SET title = ?, description = ?, instructor = ?, duration = ?,
		    level = ?, status = ?, tags = ?, thumbnail = ?, students = ?,
		    updated_at = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		c.Title,
		c.Description,
		c.Instructor,
		c.Duration,
		c.Level,
		c.Status,
		c.Tags,
		c.Thumbnail,
		c.Students,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	return core.RequireRow(result, "update course")
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM courses WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	return core.RequireRow(result, "delete course")
}

func (r *repository) List(
	ctx context.Context,
	params ListCoursesParams,
) ([]Course, int, error) {
	var conditions []string
	var args []any

	if params.Query != "" {
		like := "%" + strings.ToLower(core.EscapeLike(params.Query)) + "%"
		conditions = append(conditions, `(LOWER(title) LIKE ? ESCAPE '\'
			OR LOWER(instructor) LIKE ? ESCAPE '\'
			OR `+r.anyTag(`LOWER(t.value) LIKE ? ESCAPE '\'`)+`)`)
		args = append(args, like, like, like)
	}

	if params.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, params.Level)
	}

	if params.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, params.Status)
	}

	if params.Tag != "" {
		conditions = append(conditions, r.anyTag("t.value = ?"))
		args = append(args, params.Tag)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM courses " + whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	orderBy := "created_at ASC, id ASC"
	if col, ok := sortColumns[params.Sort]; ok {
		dir := "ASC"
		if params.Descending() {
			dir = "DESC"
		}
		orderBy = col + " " + dir + ", id ASC"
	}

	query := "SELECT " + courseColumns + " FROM courses " + whereClause +
		" ORDER BY " + orderBy
	if params.Paginated() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, params.Limit, params.Offset())
	}

	var courses []Course
	if err := r.db.SelectContext(ctx, &courses, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	return courses, total, nil
}

// anyTag matches when cond holds for at least one element of the tags
// array, exposed to cond as t.value.
func (r *repository) anyTag(cond string) string {
	if r.db.DriverName() == "sqlite3" {
		return `EXISTS (SELECT 1 FROM json_each(courses.tags) AS t WHERE ` + cond + `)`
	}
	return `EXISTS (SELECT 1 FROM json_array_elements_text(courses.tags::json) AS t(value) WHERE ` +
		cond + `)`
}

func (r *repository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"n"`
	}

	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS n FROM courses GROUP BY status`)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count courses: %w", err)
	}

	var counts StatusCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case StatusPublished:
			counts.Published += row.Count
		case StatusDraft:
			counts.Draft += row.Count
		}
	}

	return counts, nil
}
