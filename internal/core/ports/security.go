package ports

import (
	"context"
	"time"

	"github.com/jinlabs/users-management/internal/core/domain"
)

// TokenClaims is the decoded claim set of a signed credential.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// TokenCodec issues and verifies signed session credentials.
type TokenCodec interface {
	Issue(subject string, extra map[string]any) (string, error)
	// VerifySignatureAndParse checks the signature only; expiry is not evaluated.
	VerifySignatureAndParse(token string) (*TokenClaims, error)
	ExtractSubject(token string) (string, error)
	// IsExpired does not verify the signature.
	IsExpired(token string) bool
	IsTokenValid(token string, user *domain.User) bool
	// Validate reports why a token is not valid for user, nil when it is.
	Validate(token string, user *domain.User) error
}

// PasswordHasher is the one-way salted hash primitive.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// IdentityResolver loads the full identity for a credential subject.
type IdentityResolver interface {
	LoadByEmail(ctx context.Context, email string) (*domain.User, error)
}
