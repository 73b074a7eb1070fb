// AngelaMos | 2026
// handler_test.go

package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	h := NewHandler(NewService(newJSONRepo(t)))
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.PassThrough, middleware.PassThrough)
	return r
}

func send(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUserHandlerLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := send(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Ana", "email": "Ana@Test.com", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "argon2")

	var created UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, RoleUser, created.Role)
	assert.Equal(t, "ana@test.com", created.Email)

	rec = send(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Other", "email": "ana@test.com", "password": "secret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Root", "email": "root@test.com", "password": "secret", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = send(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Bad", "email": "bad@test.com", "password": "secret", "role": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodPatch, "/users/"+created.ID, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, RoleAdmin, updated.Role)
	assert.Equal(t, "Ana", updated.Name)

	rec = send(t, h, http.MethodGet, "/users?_page=1&_limit=1&_sort=name&_order=desc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))
	var page []UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, "Root", page[0].Name)

	rec = send(t, h, http.MethodGet, "/users", nil)
	assert.Empty(t, rec.Header().Get("X-Total-Count"))

	rec = send(t, h, http.MethodDelete, "/users/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())

	rec = send(t, h, http.MethodGet, "/users/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var errBody core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "User not found", errBody.Error)
}
