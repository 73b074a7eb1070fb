// AngelaMos | 2026
// tokens.go

package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
)

// TokenManager issues and parses bearer tokens. Parse only checks the
// token itself; the service resolves the user and the revocation list.
type TokenManager interface {
	Issue(user *UserInfo) (token string, expiresAt time.Time, err error)
	Parse(
		ctx context.Context,
		token string,
	) (*middleware.AccessTokenClaims, error)
}

const mockTokenPrefix = "mock-jwt-token-"

// MockTokens produces the unsigned "mock-jwt-token-<id>-<unixMillis>"
// strings that the browser client already stores and sends back.
type MockTokens struct {
	ttl time.Duration
	now func() time.Time
}

func NewMockTokens(ttl time.Duration) *MockTokens {
	return &MockTokens{ttl: ttl, now: time.Now}
}

func (m *MockTokens) Issue(user *UserInfo) (string, time.Time, error) {
	if user.ID == "" {
		return "", time.Time{}, fmt.Errorf("issue token: empty user id")
	}

	issuedAt := m.now()
	token := mockTokenPrefix + user.ID + "-" +
		strconv.FormatInt(issuedAt.UnixMilli(), 10)

	return token, m.expiry(issuedAt), nil
}

func (m *MockTokens) Parse(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	userID, issuedAt, err := parseMockToken(token)
	if err != nil {
		return nil, err
	}

	expiresAt := m.expiry(issuedAt)
	if !expiresAt.IsZero() && m.now().After(expiresAt) {
		return nil, fmt.Errorf("parse token: %w", core.ErrTokenExpired)
	}

	return &middleware.AccessTokenClaims{
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *MockTokens) expiry(issuedAt time.Time) time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return issuedAt.Add(m.ttl)
}

// parseMockToken splits on the last dash: user ids may contain dashes,
// the timestamp never does.
func parseMockToken(token string) (string, time.Time, error) {
	rest, ok := strings.CutPrefix(token, mockTokenPrefix)
	if !ok {
		return "", time.Time{}, fmt.Errorf("parse token: %w", core.ErrTokenInvalid)
	}

	idx := strings.LastIndex(rest, "-")
	if idx <= 0 || idx == len(rest)-1 {
		return "", time.Time{}, fmt.Errorf("parse token: %w", core.ErrTokenInvalid)
	}

	ms, err := strconv.ParseInt(rest[idx+1:], 10, 64)
	if err != nil || ms <= 0 {
		return "", time.Time{}, fmt.Errorf("parse token: %w", core.ErrTokenInvalid)
	}

	return rest[:idx], time.UnixMilli(ms), nil
}

// NewTokenManager picks the implementation for cfg.Auth.TokenMode.
func NewTokenManager(cfg *config.Config) (TokenManager, error) {
	switch cfg.Auth.TokenMode {
	case config.TokenModeJWT:
		return NewJWTManager(cfg.JWT)
	case config.TokenModeMock, "":
		return NewMockTokens(cfg.Auth.TokenTTL), nil
	default:
		return nil, fmt.Errorf("unknown token mode %q", cfg.Auth.TokenMode)
	}
}
