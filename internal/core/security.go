// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const saltLength = 16

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

// PasswordCheck is the outcome of CheckPassword. Rehash is set when the
// password matched a value stored in an outdated form and holds its
// replacement.
type PasswordCheck struct {
	Valid  bool
	Rehash string
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := currentArgon
	hash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword checks password against a stored value. Besides argon2id
// it accepts bcrypt hashes and, for hand written seed files, plaintext.
func VerifyPassword(password, stored string) (bool, error) {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		p, salt, hash, err := decodeArgon(stored)
		if err != nil {
			return false, err
		}
		other := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
		return subtle.ConstantTimeCompare(hash, other) == 1, nil

	case isBcryptHash(stored):
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("compare bcrypt hash: %w", err)
		}
		return true, nil

	default:
		return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1, nil
	}
}

// dummyHash is verified against when the account does not exist, so a
// miss costs as much as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("dummy_password_for_timing_attack_prevention")
	if err != nil {
		panic(fmt.Sprintf("security: generate dummy hash: %v", err))
	}
	return hash
})

// CheckPassword verifies password against stored. An empty stored value
// still does the full argon2 work and never matches.
func CheckPassword(password, stored string) (PasswordCheck, error) {
	if stored == "" {
		_, _ = VerifyPassword(password, dummyHash())
		return PasswordCheck{}, nil
	}

	valid, err := VerifyPassword(password, stored)
	if err != nil || !valid {
		return PasswordCheck{}, err
	}

	check := PasswordCheck{Valid: true}
	if needsRehash(stored) {
		// A failed rehash leaves the old value in place; the login still
		// succeeds.
		check.Rehash, _ = HashPassword(password)
	}
	return check, nil
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func decodeArgon(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errors.New("invalid argon2id hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: argon2id keys are 32 bytes
	p.keyLen = uint32(len(hash))

	return p, salt, hash, nil
}

func needsRehash(stored string) bool {
	p, _, _, err := decodeArgon(stored)
	return err != nil || p != currentArgon
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
