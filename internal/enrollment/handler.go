// AngelaMos | 2026
// handler.go

package enrollment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
)

const msgNotOwner = "You can only access your own enrollments"

type Handler struct {
	service   *Service
	validator *validator.Validate
	ownership bool
}

// NewHandler builds the enrollment handler. With ownership on, non-admin
// callers only see and change their own enrollments.
func NewHandler(service *Service, ownership bool) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
		ownership: ownership,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/enrollments", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListEnrollments)
		r.Post("/", h.Enroll)
		r.Get("/{enrollmentID}", h.GetEnrollment)
		r.Put("/{enrollmentID}", h.UpdateProgress)
		r.Patch("/{enrollmentID}", h.UpdateProgress)
		r.Put("/{enrollmentID}/progress", h.UpdateProgress)
		r.Delete("/{enrollmentID}", h.DeleteEnrollment)
	})
}

func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListEnrollmentsParams{
		ListParams: core.ParseListParams(r, SortableFields...),
		UserID:     q.Get("userId"),
		CourseID:   q.Get("courseId"),
	}

	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			core.BadRequest(w, "completed must be true or false")
			return
		}
		params.Completed = &completed
	}

	if h.restricted(r) {
		callerID := middleware.GetUserID(r.Context())
		if params.UserID != "" && params.UserID != callerID {
			core.Forbidden(w, msgNotOwner)
			return
		}
		params.UserID = callerID
	}

	details, total, err := h.service.ListEnrollments(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.List(w, details, params.TotalHeader(total))
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if req.UserID == "" || req.CourseID == "" {
		core.BadRequest(w, "userId and courseId are required")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if h.restricted(r) && req.UserID != middleware.GetUserID(r.Context()) {
		core.Forbidden(w, msgNotOwner)
		return
	}

	e, err := h.service.Enroll(r.Context(), req.UserID, req.CourseID)
	if err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			core.Conflict(w, "Already enrolled in this course")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, e)
}

func (h *Handler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetEnrollmentDetail(r.Context(), chi.URLParam(r, "enrollmentID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "Enrollment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if h.restricted(r) && detail.UserID != middleware.GetUserID(r.Context()) {
		core.Forbidden(w, msgNotOwner)
		return
	}

	core.OK(w, detail)
}

func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "enrollmentID")

	var req ProgressRequest
	if !core.Bind(w, r, h.validator, &req) {
		return
	}

	if !h.authorize(w, r, id) {
		return
	}

	e, err := h.service.UpdateProgress(r.Context(), id, *req.Progress)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "Enrollment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, e)
}

func (h *Handler) DeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "enrollmentID")

	if !h.authorize(w, r, id) {
		return
	}

	if err := h.service.DeleteEnrollment(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "Enrollment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Deleted(w)
}

func (h *Handler) restricted(r *http.Request) bool {
	return h.ownership && !middleware.IsAdmin(r.Context())
}

// authorize loads the enrollment for an ownership check and writes the
// 404 or 403 itself. It reports whether the request may continue.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, id string) bool {
	if !h.restricted(r) {
		return true
	}

	e, err := h.service.GetEnrollment(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "Enrollment")
			return false
		}
		core.InternalServerError(w, err)
		return false
	}

	if e.UserID != middleware.GetUserID(r.Context()) {
		core.Forbidden(w, msgNotOwner)
		return false
	}

	return true
}
