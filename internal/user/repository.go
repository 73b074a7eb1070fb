// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	CountByRole(ctx context.Context) (RoleCounts, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository returns the SQL implementation. Queries use '?' and are
// rebound for the connected driver.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password, role, created_at`

var sortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := r.db.Rebind(`
		INSERT INTO users (id, name, email, password, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := r.db.Rebind(
		`SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER(?)`,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByIDs(
	ctx context.Context,
	ids []string,
) (map[string]*User, error) {
	out := make(map[string]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := r.db.Rebind(
		`SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders + `)`,
	)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("get users by id: %w", err)
	}

	for i := range users {
		out[users[i].ID] = &users[i]
	}

	return out, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := r.db.Rebind(`
		UPDATE users
		SET name = ?, email = ?, password = ?, role = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.Password,
		user.Role,
		user.ID,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return core.RequireRow(result, "update user")
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := r.db.Rebind(`UPDATE users SET password = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return core.RequireRow(result, "update password")
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM users WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return core.RequireRow(result, "delete user")
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var conditions []string
	var args []any

	if params.Query != "" {
		like := "%" + strings.ToLower(core.EscapeLike(params.Query)) + "%"
		conditions = append(conditions,
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}

	if params.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, params.Role)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM users " + whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	orderBy := "created_at ASC, id ASC"
	if col, ok := sortColumns[params.Sort]; ok {
		dir := "ASC"
		if params.Descending() {
			dir = "DESC"
		}
		orderBy = col + " " + dir + ", id ASC"
	}

	query := "SELECT " + userColumns + " FROM users " + whereClause +
		" ORDER BY " + orderBy
	if params.Paginated() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, params.Limit, params.Offset())
	}

	var users []User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) CountByRole(ctx context.Context) (RoleCounts, error) {
	var rows []struct {
		Role  string `db:"role"`
		Count int    `db:"n"`
	}

	err := r.db.SelectContext(ctx, &rows,
		`SELECT role, COUNT(*) AS n FROM users GROUP BY role`)
	if err != nil {
		return RoleCounts{}, fmt.Errorf("count users: %w", err)
	}

	var counts RoleCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Role {
		case RoleAdmin:
			counts.Admins += row.Count
		default:
			counts.Users += row.Count
		}
	}

	return counts, nil
}
