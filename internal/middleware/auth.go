// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type principalKey struct{}

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// AccessTokenClaims is what every token mode resolves to, whether the
// token is a signed JWT or the opaque mock string.
type AccessTokenClaims struct {
	UserID    string
	Role      string
	Email     string
	ExpiresAt time.Time
}

// Principal is the caller attached to a request once its token checks out.
type Principal struct {
	AccessTokenClaims
	Token string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Guards are the two checks a route group mounts: who the caller is and
// whether they are an admin.
type Guards struct {
	Authenticate func(http.Handler) http.Handler
	Admin        func(http.Handler) http.Handler
}

// StrictGuards always demand a valid token, and an admin role for Admin.
func StrictGuards(verifier TokenVerifier) Guards {
	return Guards{
		Authenticate: Authenticator(verifier),
		Admin:        RequireAdmin,
	}
}

// NewGuards is StrictGuards when enforce is set. Otherwise a token is
// still resolved when present but nothing is refused.
func NewGuards(verifier TokenVerifier, enforce bool) Guards {
	if enforce {
		return StrictGuards(verifier)
	}
	return Guards{
		Authenticate: OptionalAuth(verifier),
		Admin:        PassThrough,
	}
}

func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				core.JSONError(w, core.UnauthorizedError("missing authorization token"))
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				writeTokenError(w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{AccessTokenClaims: *claims, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the caller when the token is valid and otherwise
// carries on anonymously.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				if claims, err := verifier.VerifyAccessToken(r.Context(), token); err == nil {
					r = r.WithContext(WithPrincipal(r.Context(), Principal{
						AccessTokenClaims: *claims,
						Token:             token,
					}))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			switch {
			case !ok:
				core.JSONError(w, core.UnauthorizedError("authentication required"))
			case !slices.Contains(roles, p.Role):
				core.JSONError(w, core.ForbiddenError("insufficient permissions"))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(RoleAdmin)(next)
}

// PassThrough stands in for a guard on routes that are left open when
// auth enforcement is off.
func PassThrough(next http.Handler) http.Handler {
	return next
}

func ExtractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeTokenError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.UserID
}

func GetUserRole(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.Role
}

func GetToken(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.Token
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRole(ctx) == RoleAdmin
}
