// AngelaMos | 2026
// repository_json.go

package user

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type jsonRepository struct {
	db *core.JSONDB
}

// NewJSONRepository stores users in the "users" array of a db.json file.
func NewJSONRepository(db *core.JSONDB) Repository {
	return &jsonRepository{db: db}
}

func (r *jsonRepository) load(tx *core.JSONTx) ([]User, error) {
	return core.Decode[User](tx, core.CollectionUsers)
}

func (r *jsonRepository) Create(_ context.Context, user *User) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		for i := range users {
			if users[i].ID == user.ID {
				return fmt.Errorf("create user: id taken: %w", core.ErrDuplicateKey)
			}
			if strings.EqualFold(users[i].Email, user.Email) {
				return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
			}
		}

		return core.Encode(tx, core.CollectionUsers, append(users, *user))
	})
}

func (r *jsonRepository) GetByID(_ context.Context, id string) (*User, error) {
	var found *User
	err := r.db.View(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return err
		}
		if i := indexByID(users, id); i >= 0 {
			found = &users[i]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}

	return found, nil
}

func (r *jsonRepository) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	var found *User
	err := r.db.View(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return err
		}
		for i := range users {
			if strings.EqualFold(users[i].Email, email) {
				found = &users[i]
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}

	return found, nil
}

func (r *jsonRepository) GetByIDs(
	_ context.Context,
	ids []string,
) (map[string]*User, error) {
	out := make(map[string]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	err := r.db.View(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return err
		}
		for i := range users {
			if slices.Contains(ids, users[i].ID) {
				out[users[i].ID] = &users[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get users by id: %w", err)
	}

	return out, nil
}

func (r *jsonRepository) Update(_ context.Context, user *User) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		idx := indexByID(users, user.ID)
		if idx < 0 {
			return fmt.Errorf("update user: %w", core.ErrNotFound)
		}

		for i := range users {
			if i != idx && strings.EqualFold(users[i].Email, user.Email) {
				return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
			}
		}

		users[idx] = *user
		return core.Encode(tx, core.CollectionUsers, users)
	})
}

func (r *jsonRepository) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return fmt.Errorf("update password: %w", err)
		}

		idx := indexByID(users, id)
		if idx < 0 {
			return fmt.Errorf("update password: %w", core.ErrNotFound)
		}

		users[idx].Password = passwordHash
		return core.Encode(tx, core.CollectionUsers, users)
	})
}

func (r *jsonRepository) Delete(_ context.Context, id string) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		idx := indexByID(users, id)
		if idx < 0 {
			return fmt.Errorf("delete user: %w", core.ErrNotFound)
		}

		return core.Encode(tx, core.CollectionUsers, slices.Delete(users, idx, idx+1))
	})
}

func (r *jsonRepository) List(
	_ context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var matched []User
	err := r.db.View(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if params.Role != "" && u.Role != params.Role {
				continue
			}
			if !core.ContainsFold(params.Query, u.Name, u.Email) {
				continue
			}
			matched = append(matched, u)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	sortUsers(matched, params.Sort, params.Descending())

	return core.Page(matched, params.ListParams), len(matched), nil
}

func (r *jsonRepository) CountByRole(_ context.Context) (RoleCounts, error) {
	var counts RoleCounts
	err := r.db.View(func(tx *core.JSONTx) error {
		users, err := r.load(tx)
		if err != nil {
			return err
		}
		for _, u := range users {
			counts.Total++
			if u.IsAdmin() {
				counts.Admins++
			} else {
				counts.Users++
			}
		}
		return nil
	})
	if err != nil {
		return RoleCounts{}, fmt.Errorf("count users: %w", err)
	}

	return counts, nil
}

func indexByID(users []User, id string) int {
	return slices.IndexFunc(users, func(u User) bool { return u.ID == id })
}

// sortUsers keeps file order when no sort field is given, matching what
// json-server returns.
func sortUsers(users []User, field string, desc bool) {
	var cmp func(a, b User) int
	switch field {
	case "name":
		cmp = func(a, b User) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case "email":
		cmp = func(a, b User) int { return strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email)) }
	case "createdAt":
		cmp = func(a, b User) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return
	}

	slices.SortStableFunc(users, func(a, b User) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
}
