// AngelaMos | 2026
// enrollments.go

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type EnrollmentService struct {
	client *Client
}

type EnrollmentFilter struct {
	ListOptions
	UserID    string
	CourseID  string
	Completed *bool
}

func (s *EnrollmentService) List(ctx context.Context, f EnrollmentFilter) ([]Enrollment, int, error) {
	q := f.values()
	setIf(q, "userId", f.UserID)
	setIf(q, "courseId", f.CourseID)
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}

	var out []Enrollment
	resp, err := s.client.do(ctx, http.MethodGet, "/enrollments", q, nil, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, totalCount(resp, len(out)), nil
}

func (s *EnrollmentService) ListByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	out, _, err := s.List(ctx, EnrollmentFilter{UserID: userID})
	return out, err
}

func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID string) ([]Enrollment, error) {
	out, _, err := s.List(ctx, EnrollmentFilter{CourseID: courseID})
	return out, err
}

func (s *EnrollmentService) Get(ctx context.Context, id string) (*Enrollment, error) {
	var out Enrollment
	if _, err := s.client.do(ctx, http.MethodGet, "/enrollments/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll checks the user's enrollments first and returns
// ErrAlreadyEnrolled without a POST when the pair exists. A 409 from the
// server maps to the same error.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*Enrollment, error) {
	existing, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.CourseID == courseID {
			return nil, ErrAlreadyEnrolled
		}
	}

	var out Enrollment
	_, err = s.client.do(ctx, http.MethodPost, "/enrollments", nil, map[string]string{
		"userId":   userID,
		"courseId": courseID,
	}, &out)
	if err != nil {
		if StatusCode(err) == http.StatusConflict {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyEnrolled, err)
		}
		return nil, err
	}
	return &out, nil
}

// UpdateProgress clamps progress into [0,100] before sending it.
func (s *EnrollmentService) UpdateProgress(
	ctx context.Context,
	id string,
	progress float64,
) (*Enrollment, error) {
	progress = min(max(progress, 0), 100)

	var out Enrollment
	path := "/enrollments/" + url.PathEscape(id) + "/progress"
	if _, err := s.client.do(ctx, http.MethodPut, path, nil, map[string]float64{
		"progress": progress,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/enrollments/"+url.PathEscape(id), nil, nil, nil)
	return err
}
