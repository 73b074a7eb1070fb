// AngelaMos | 2026
// handler.go

package course

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts /courses. Anyone who passes authenticator can read
// the catalog; changing it takes adminOnly.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/courses", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListCourses)
		r.Get("/{courseID}", h.GetCourse)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", h.CreateCourse)
			r.Put("/{courseID}", h.UpdateCourse)
			r.Patch("/{courseID}", h.UpdateCourse)
			r.Delete("/{courseID}", h.DeleteCourse)
		})
	})
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListCoursesParams{
		ListParams: core.ParseListParams(r, SortableFields...),
		Level:      q.Get("level"),
		Status:     q.Get("status"),
		Tag:        q.Get("tag"),
	}

	courses, total, err := h.service.ListCourses(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.List(w, courses, params.TotalHeader(total))
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCourse(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, c)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if !core.Bind(w, r, h.validator, &req) {
		return
	}

	c, err := h.service.CreateCourse(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, c)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req UpdateCourseRequest
	if !core.Bind(w, r, h.validator, &req) {
		return
	}

	c, err := h.service.UpdateCourse(r.Context(), chi.URLParam(r, "courseID"), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, c)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCourse(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		writeError(w, err)
		return
	}

	core.Deleted(w)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "Course")
		return
	}
	core.InternalServerError(w, err)
}
