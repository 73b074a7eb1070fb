// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

func newJSONRepo(t *testing.T) Repository {
	t.Helper()
	db, err := core.OpenJSONDB(filepath.Join(t.TempDir(), "db.json"), nil)
	require.NoError(t, err)
	return NewJSONRepository(db)
}

func newSQLiteRepo(t *testing.T) Repository {
	t.Helper()
	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "lms.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return NewRepository(db.DB)
}

func repositories(t *testing.T) map[string]func(*testing.T) Repository {
	t.Helper()
	return map[string]func(*testing.T) Repository{
		"json":   newJSONRepo,
		"sqlite": newSQLiteRepo,
	}
}

func seed(t *testing.T, repo Repository) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []User{
		{ID: "u1", Name: "Carol Admin", Email: "carol@test.com", Password: "x", Role: RoleAdmin, CreatedAt: base},
		{ID: "u2", Name: "alice", Email: "alice@test.com", Password: "x", Role: RoleUser, CreatedAt: base.Add(time.Hour)},
		{ID: "u3", Name: "Bob", Email: "bob@example.com", Password: "x", Role: RoleUser, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range users {
		require.NoError(t, repo.Create(context.Background(), &users[i]))
	}
}

func TestRepositoryCRUD(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := open(t)
			ctx := context.Background()
			seed(t, repo)

			got, err := repo.GetByEmail(ctx, "ALICE@test.com")
			require.NoError(t, err)
			assert.Equal(t, "u2", got.ID)
			assert.True(t, got.CreatedAt.Equal(time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)))

			dup := User{ID: "u9", Name: "x", Email: "alice@test.com", Role: RoleUser, CreatedAt: core.Now()}
			require.ErrorIs(t, repo.Create(ctx, &dup), core.ErrDuplicateKey)

			got.Name = "Alice"
			require.NoError(t, repo.Update(ctx, got))
			again, err := repo.GetByID(ctx, "u2")
			require.NoError(t, err)
			assert.Equal(t, "Alice", again.Name)

			again.Email = "bob@example.com"
			require.ErrorIs(t, repo.Update(ctx, again), core.ErrDuplicateKey)

			require.NoError(t, repo.UpdatePassword(ctx, "u2", "$argon2id$new"))
			again, err = repo.GetByID(ctx, "u2")
			require.NoError(t, err)
			assert.Equal(t, "$argon2id$new", again.Password)

			byID, err := repo.GetByIDs(ctx, []string{"u1", "u3", "missing"})
			require.NoError(t, err)
			assert.Len(t, byID, 2)
			assert.Equal(t, "Bob", byID["u3"].Name)

			require.NoError(t, repo.Delete(ctx, "u3"))
			_, err = repo.GetByID(ctx, "u3")
			require.ErrorIs(t, err, core.ErrNotFound)
			require.ErrorIs(t, repo.Delete(ctx, "u3"), core.ErrNotFound)

			counts, err := repo.CountByRole(ctx)
			require.NoError(t, err)
			assert.Equal(t, RoleCounts{Total: 2, Admins: 1, Users: 1}, counts)
		})
	}
}

func TestRepositoryList(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := open(t)
			ctx := context.Background()
			seed(t, repo)

			all, total, err := repo.List(ctx, ListUsersParams{})
			require.NoError(t, err)
			assert.Equal(t, 3, total)
			assert.Equal(t, []string{"u1", "u2", "u3"}, ids(all))

			found, total, err := repo.List(ctx, ListUsersParams{
				ListParams: core.ListParams{Query: "TEST.COM"},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, total)
			assert.Equal(t, []string{"u1", "u2"}, ids(found))

			users, _, err := repo.List(ctx, ListUsersParams{Role: RoleUser})
			require.NoError(t, err)
			assert.Equal(t, []string{"u2", "u3"}, ids(users))

			sorted, _, err := repo.List(ctx, ListUsersParams{
				ListParams: core.ListParams{Sort: "createdAt", Order: core.SortDesc},
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"u3", "u2", "u1"}, ids(sorted))

			page, total, err := repo.List(ctx, ListUsersParams{
				ListParams: core.ListParams{Page: 2, Limit: 2, Order: core.SortAsc},
			})
			require.NoError(t, err)
			assert.Equal(t, 3, total)
			assert.Equal(t, []string{"u3"}, ids(page))
		})
	}
}

func ids(users []User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
