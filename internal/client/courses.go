// AngelaMos | 2026
// courses.go

package client

import (
	"context"
	"net/http"
	"net/url"
)

type CourseService struct {
	client *Client
}

type CourseFilter struct {
	ListOptions
	Level  string
	Status string
	Tag    string
}

func (s *CourseService) List(ctx context.Context, f CourseFilter) ([]Course, int, error) {
	q := f.values()
	setIf(q, "level", f.Level)
	setIf(q, "status", f.Status)
	setIf(q, "tag", f.Tag)

	var out []Course
	resp, err := s.client.do(ctx, http.MethodGet, "/courses", q, nil, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, totalCount(resp, len(out)), nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*Course, error) {
	var out Course
	if _, err := s.client.do(ctx, http.MethodGet, "/courses/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create fills the same defaults the server applies so the request body
// is complete on its own.
func (s *CourseService) Create(ctx context.Context, in CourseInput) (*Course, error) {
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	var out Course
	if _, err := s.client.do(ctx, http.MethodPost, "/courses", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CourseService) Update(ctx context.Context, id string, in CourseUpdate) (*Course, error) {
	var out Course
	if _, err := s.client.do(ctx, http.MethodPatch, "/courses/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
