// AngelaMos | 2026
// users.go

package client

import (
	"context"
	"net/http"
	"net/url"
)

type UserService struct {
	client *Client
}

type UserFilter struct {
	ListOptions
	Role string
}

func (s *UserService) List(ctx context.Context, f UserFilter) ([]User, int, error) {
	q := f.values()
	setIf(q, "role", f.Role)

	var out []User
	resp, err := s.client.do(ctx, http.MethodGet, "/users", q, nil, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, totalCount(resp, len(out)), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	var out User
	if _, err := s.client.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create defaults the role to user.
func (s *UserService) Create(ctx context.Context, in UserInput) (*User, error) {
	if in.Role == "" {
		in.Role = RoleUser
	}

	var out User
	if _, err := s.client.do(ctx, http.MethodPost, "/users", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (*User, error) {
	var out User
	if _, err := s.client.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
	return err
}
