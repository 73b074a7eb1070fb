// AngelaMos | 2026
// handler_test.go

package enrollment

import (
	"bytes"
	"context"
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

func as(userID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithPrincipal(r.Context(), middleware.Principal{
				AccessTokenClaims: middleware.AccessTokenClaims{UserID: userID, Role: role},
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func router(service *Service, ownership bool, authenticator func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	NewHandler(service, ownership).RegisterRoutes(r, authenticator)
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

func TestEnrollmentHandlerLifecycle(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "c@test.com")
	c := f.course(t, "Databases")
	h := router(f.service, false, middleware.PassThrough)

	rec := send(t, h, http.MethodPost, "/enrollments", map[string]string{"userId": u.ID})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodPost, "/enrollments", map[string]string{"userId": u.ID, "courseId": c.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completedAt":null`)
	var created Enrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = send(t, h, http.MethodPost, "/enrollments", map[string]string{"userId": u.ID, "courseId": c.ID})
	require.Equal(t, http.StatusConflict, rec.Code)
	var errBody core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "Already enrolled in this course", errBody.Error)

	rec = send(t, h, http.MethodGet, "/enrollments?userId="+u.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Course)
	assert.Equal(t, "Databases", listed[0].Course.Title)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = send(t, h, http.MethodPut, "/enrollments/"+created.ID+"/progress", map[string]float64{"progress": 120})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Enrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.InDelta(t, 100.0, updated.Progress, 0)
	assert.NotNil(t, updated.CompletedAt)

	rec = send(t, h, http.MethodPatch, "/enrollments/"+created.ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodGet, "/enrollments?completed=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodGet, "/enrollments?completed=true&_page=1&_limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec = send(t, h, http.MethodDelete, "/enrollments/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())

	rec = send(t, h, http.MethodGet, "/enrollments/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "Enrollment not found", errBody.Error)
}

func TestEnrollmentOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine, err := f.service.Enroll(ctx, "alice", "c1")
	require.NoError(t, err)
	theirs, err := f.service.Enroll(ctx, "bob", "c1")
	require.NoError(t, err)

	alice := router(f.service, true, as("alice", middleware.RoleUser))
	admin := router(f.service, true, as("root", middleware.RoleAdmin))

	rec := send(t, alice, http.MethodGet, "/enrollments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	rec = send(t, alice, http.MethodGet, "/enrollments?userId=bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, alice, http.MethodGet, "/enrollments/"+theirs.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, alice, http.MethodPut, "/enrollments/"+theirs.ID, map[string]float64{"progress": 50})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, alice, http.MethodDelete, "/enrollments/"+theirs.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, alice, http.MethodPost, "/enrollments", map[string]string{"userId": "bob", "courseId": "c2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, alice, http.MethodPut, "/enrollments/"+mine.ID, map[string]float64{"progress": 30})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, admin, http.MethodGet, "/enrollments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)
}
