// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		name, email, passwordHash, role string,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	tokens       TokenManager
	userProvider UserProvider
	revoked      RevocationStore
}

func NewService(
	tokens TokenManager,
	userProvider UserProvider,
	revoked RevocationStore,
) *Service {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}

	return &Service{
		tokens:       tokens,
		userProvider: userProvider,
		revoked:      revoked,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // an unknown email costs as much as a wrong password
			_, _ = core.CheckPassword(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	check, err := core.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !check.Valid {
		return nil, ErrInvalidCredentials
	}

	if check.Rehash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, check.Rehash); err != nil {
			slog.Warn("password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.createAuthResponse(user)
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(
		ctx,
		strings.TrimSpace(req.Name),
		req.Email,
		passwordHash,
		middleware.RoleUser,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(user)
}

// Logout revokes the presented token. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if err := s.revoked.Revoke(ctx, token, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// VerifyAccessToken satisfies middleware.TokenVerifier. The role always
// comes from the stored user so that role changes apply immediately.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	claims, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: unknown user: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	claims.Role = user.Role
	claims.Email = user.Email
	return claims, nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// SeedAdmin creates the configured admin account unless a user with that
// email already exists.
func (s *Service) SeedAdmin(ctx context.Context, cfg config.SeedConfig) error {
	if !cfg.Enabled() {
		return nil
	}

	_, err := s.userProvider.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}

	hash, err := core.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	name := cfg.AdminName
	if name == "" {
		name = "Admin User"
	}

	if _, err := s.userProvider.Create(
		ctx,
		name,
		cfg.AdminEmail,
		hash,
		middleware.RoleAdmin,
	); err != nil && !errors.Is(err, core.ErrDuplicateKey) {
		return fmt.Errorf("seed admin: %w", err)
	}

	slog.Info("seeded admin account", "email", cfg.AdminEmail)
	return nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResponse{
		User:  toUserResponse(user),
		Token: token,
	}, nil
}
