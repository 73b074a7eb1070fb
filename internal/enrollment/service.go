// AngelaMos | 2026
// service.go

package enrollment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

type CourseLookup interface {
	GetCoursesByIDs(ctx context.Context, ids []string) (map[string]*course.Course, error)
}

type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*user.User, error)
}

type Service struct {
	repo    Repository
	courses CourseLookup
	users   UserLookup
}

func NewService(repo Repository, courses CourseLookup, users UserLookup) *Service {
	return &Service{
		repo:    repo,
		courses: courses,
		users:   users,
	}
}

// Enroll creates a fresh enrollment for the pair, or ErrAlreadyEnrolled.
// Neither side is required to exist.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) (*Enrollment, error) {
	e := &Enrollment{
		ID:         uuid.New().String(),
		UserID:     userID,
		CourseID:   courseID,
		Progress:   MinProgress,
		EnrolledAt: core.Now(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "enrollment.created",
		core.AttrEnrollmentID.String(e.ID),
		core.AttrUserID.String(userID),
		core.AttrCourseID.String(courseID),
	)

	return e, nil
}

func (s *Service) GetEnrollment(ctx context.Context, id string) (*Enrollment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetEnrollmentDetail(ctx context.Context, id string) (*Detail, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.Enrich(ctx, []Enrollment{*e})
	if err != nil {
		return nil, err
	}

	return &details[0], nil
}

func (s *Service) UpdateProgress(
	ctx context.Context,
	id string,
	progress float64,
) (*Enrollment, error) {
	now := core.Now()
	e, err := s.repo.SetProgress(ctx, id, progress, now)
	if err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "enrollment.progress_updated",
		core.AttrEnrollmentID.String(e.ID),
		attribute.Float64("lms.enrollment.progress", e.Progress),
	)
	if e.CompletedAt != nil && e.CompletedAt.Equal(now) {
		core.AddSpanEvent(ctx, "enrollment.completed",
			core.AttrEnrollmentID.String(e.ID),
		)
	}

	return e, nil
}

func (s *Service) DeleteEnrollment(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListEnrollments(
	ctx context.Context,
	params ListEnrollmentsParams,
) ([]Detail, int, error) {
	enrollments, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	details, err := s.Enrich(ctx, enrollments)
	if err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

// Enrich joins each enrollment to its course and user with one batched
// lookup per side.
func (s *Service) Enrich(ctx context.Context, enrollments []Enrollment) (_ []Detail, err error) {
	details := make([]Detail, len(enrollments))
	if len(enrollments) == 0 {
		return details, nil
	}

	ctx, span := core.StartSpan(ctx, "enrollment.enrich",
		attribute.Int("lms.enrollment.count", len(enrollments)),
	)
	defer func() { core.EndSpan(span, err) }()

	courseIDs := make([]string, 0, len(enrollments))
	userIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = appendUnique(courseIDs, e.CourseID)
		userIDs = appendUnique(userIDs, e.UserID)
	}

	courses, err := s.courses.GetCoursesByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("enrich enrollments: %w", err)
	}

	users, err := s.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("enrich enrollments: %w", err)
	}

	for i, e := range enrollments {
		details[i] = Detail{
			Enrollment: e,
			Course:     courses[e.CourseID],
		}
		if u, ok := users[e.UserID]; ok {
			details[i].User = &UserSummary{
				ID:    u.ID,
				Name:  u.Name,
				Email: u.Email,
				Role:  u.Role,
			}
		}
	}

	return details, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
