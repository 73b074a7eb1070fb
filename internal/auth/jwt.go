// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
)

const (
	claimRole  = "role"
	claimEmail = "email"
	claimType  = "type"

	accessTokenType = "access"
	jwksMaxAge      = "public, max-age=3600"
	keyIDLength     = 12
)

// JWTManager signs ES256 access tokens. The key id is derived from the
// public key thumbprint so it stays stable across restarts.
type JWTManager struct {
	signing  jwk.Key
	verify   jwk.Key
	jwks     jwk.Set
	keyID    string
	issuer   string
	audience string
	ttl      time.Duration
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	raw, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	parsed, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	signing, verify, err := signingPair(parsed)
	if err != nil {
		return nil, err
	}

	set := jwk.NewSet()
	if err := set.AddKey(verify); err != nil {
		return nil, fmt.Errorf("build jwks: %w", err)
	}

	m := &JWTManager{
		signing:  signing,
		verify:   verify,
		jwks:     set,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.AccessTokenExpire,
	}
	_ = signing.Get(jwk.KeyIDKey, &m.keyID)

	return m, nil
}

// signingPair stamps alg and kid on the private key and returns it with
// its public half marked for signature use.
func signingPair(private jwk.Key) (jwk.Key, jwk.Key, error) {
	public, err := private.PublicKey()
	if err != nil {
		return nil, nil, fmt.Errorf("derive public key: %w", err)
	}

	sum, err := public.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, nil, fmt.Errorf("key thumbprint: %w", err)
	}
	kid := base64.RawURLEncoding.EncodeToString(sum)[:keyIDLength]

	for _, k := range []jwk.Key{private, public} {
		if err := k.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
			return nil, nil, fmt.Errorf("set algorithm: %w", err)
		}
		if err := k.Set(jwk.KeyIDKey, kid); err != nil {
			return nil, nil, fmt.Errorf("set key id: %w", err)
		}
	}
	if err := public.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, nil, fmt.Errorf("set key usage: %w", err)
	}

	return private, public, nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM, creating parent
// directories as needed.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	imported, err := jwk.Import(ecKey)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}

	private, public, err := signingPair(imported)
	if err != nil {
		return err
	}

	if err := writePEM(privateKeyPath, private, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	//nolint:gosec // G306: public key is meant to be readable
	if err := writePEM(publicKeyPath, public, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	return nil
}

func writePEM(path string, key jwk.Key, perm os.FileMode) error {
	encoded, err := jwk.Pem(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, encoded, perm)
}

func (m *JWTManager) Issue(user *UserInfo) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.issuer).
		Audience([]string{m.audience}).
		Subject(user.ID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim(claimRole, user.Role).
		Claim(claimEmail, user.Email).
		Claim(claimType, accessTokenType).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.signing))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), expiresAt, nil
}

func (m *JWTManager) Parse(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verify),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
	)
	if err != nil {
		if expired(err) {
			return nil, fmt.Errorf("parse token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse token: %w", core.ErrTokenInvalid)
	}

	var kind, role, email string
	if err := token.Get(claimType, &kind); err != nil || kind != accessTokenType {
		return nil, fmt.Errorf("parse token: wrong type: %w", core.ErrTokenInvalid)
	}
	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("parse token: no subject: %w", core.ErrTokenInvalid)
	}
	if err := token.Get(claimRole, &role); err != nil {
		return nil, fmt.Errorf("parse token: no role: %w", core.ErrTokenInvalid)
	}
	_ = token.Get(claimEmail, &email)

	claims := &middleware.AccessTokenClaims{
		UserID: subject,
		Role:   role,
		Email:  email,
	}
	claims.ExpiresAt, _ = token.Expiration()

	return claims, nil
}

// expired reports whether jwx rejected the token on its exp claim. The
// validation error text names the failing claim.
func expired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "exp") && strings.Contains(msg, "not satisfied")
}

func (m *JWTManager) KeyID() string {
	return m.keyID
}

// JWKS serves the public signing key for token consumers.
func (m *JWTManager) JWKS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", jwksMaxAge)
	core.OK(w, m.jwks)
}
