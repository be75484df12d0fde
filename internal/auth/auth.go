// Package auth authenticates admin users against bcrypt hashes from the
// runtime configuration and tracks their session tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/internal/runtimeconfig"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong
	// password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUnauthenticated    = errors.New("auth: unauthenticated")
)

// Principal identifies an authenticated admin.
type Principal struct {
	Username string `json:"username"`
}

// Authenticator verifies admin credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Principal, error)
}

// CredentialAuthenticator checks passwords against configured bcrypt hashes.
type CredentialAuthenticator struct {
	hashes map[string][]byte
	// dummy is compared when the user is unknown so both paths cost a
	// bcrypt comparison.
	dummy  []byte
	logger interfaces.Logger
}

// NewCredentialAuthenticator indexes users by lower-cased username.
func NewCredentialAuthenticator(users []runtimeconfig.AdminUser, logger interfaces.Logger) *CredentialAuthenticator {
	if logger == nil {
		logger = logging.NoOp()
	}
	hashes := make(map[string][]byte, len(users))
	for _, user := range users {
		name := normalizeUsername(user.Username)
		if name == "" || user.PasswordHash == "" {
			continue
		}
		hashes[name] = []byte(user.PasswordHash)
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("tapdev-site"), dummyCost(hashes))
	return &CredentialAuthenticator{hashes: hashes, dummy: dummy, logger: logger}
}

// dummyCost returns the highest cost among the configured hashes so unknown
// users take as long to reject as known ones.
func dummyCost(hashes map[string][]byte) int {
	best := 0
	for _, hash := range hashes {
		if cost, err := bcrypt.Cost(hash); err == nil && cost > best {
			best = cost
		}
	}
	if best == 0 {
		return bcrypt.DefaultCost
	}
	return best
}

func (a *CredentialAuthenticator) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}
	name := normalizeUsername(username)
	hash, ok := a.hashes[name]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(a.dummy, []byte(password))
		a.logger.WithContext(ctx).Warn("auth.login.unknown_user", "username", name)
		return Principal{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		a.logger.WithContext(ctx).Warn("auth.login.rejected", "username", name)
		return Principal{}, ErrInvalidCredentials
	}
	a.logger.WithContext(ctx).Info("auth.login.accepted", "username", name)
	return Principal{Username: name}, nil
}

// HashPassword returns a bcrypt hash suitable for the admin users config.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeUsername(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
