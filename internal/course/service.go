// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCourse fills the defaults a new course starts with: Draft, no
// tags, no thumbnail, zero students.
func (s *Service) CreateCourse(
	ctx context.Context,
	req CreateCourseRequest,
) (*Course, error) {
	now := core.Now()

	c := &Course{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Instructor:  strings.TrimSpace(req.Instructor),
		Duration:    req.Duration,
		Level:       req.Level,
		Status:      req.Status,
		Tags:        cleanTags(req.Tags),
		Thumbnail:   req.Thumbnail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if req.Students != nil {
		c.Students = *req.Students
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "course.created",
		core.AttrCourseID.String(c.ID),
		attribute.String("lms.course.status", c.Status),
	)

	return c, nil
}

func (s *Service) GetCourse(ctx context.Context, id string) (*Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetCoursesByIDs(
	ctx context.Context,
	ids []string,
) (map[string]*Course, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *Service) UpdateCourse(
	ctx context.Context,
	id string,
	req UpdateCourseRequest,
) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Instructor != nil {
		c.Instructor = strings.TrimSpace(*req.Instructor)
	}
	if req.Duration != nil {
		c.Duration = *req.Duration
	}
	if req.Level != nil {
		c.Level = *req.Level
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Tags != nil {
		c.Tags = cleanTags(*req.Tags)
	}
	if req.Thumbnail != nil {
		c.Thumbnail = *req.Thumbnail
	}
	if req.Students != nil {
		c.Students = *req.Students
	}

	c.UpdatedAt = core.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListCourses(
	ctx context.Context,
	params ListCoursesParams,
) ([]Course, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) CountByStatus(ctx context.Context) (StatusCounts, error) {
	return s.repo.CountByStatus(ctx)
}

func cleanTags(tags []string) Tags {
	out := make(Tags, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
