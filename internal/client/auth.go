// AngelaMos | 2026
// auth.go

package client

import (
	"context"
	"net/http"
)

type AuthService struct {
	client *Client
}

// Login stores the returned token and user on the client.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	_, err := s.client.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}

	s.client.setSession(out.Token, &out.User)
	return &out, nil
}

func (s *AuthService) Register(
	ctx context.Context,
	name, email, password string,
) (*AuthResponse, error) {
	var out AuthResponse
	_, err := s.client.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}

	s.client.setSession(out.Token, &out.User)
	return &out, nil
}

// Me asks the server who the held token belongs to.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	if !s.client.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	var out User
	if _, err := s.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the token server side and always clears the local
// session, even when the server call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	defer s.client.setSession("", nil)

	if !s.client.IsAuthenticated() {
		return nil
	}

	_, err := s.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	return err
}
