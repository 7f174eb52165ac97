package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/core/ports"
)

// TokenTTL is the fixed lifetime of access and refresh credentials.
const TokenTTL = 24 * time.Hour

// JWTCodec issues and verifies HS256 compact tokens with a single process key.
// It holds no mutable state and is safe for concurrent use.
type JWTCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option configures a JWTCodec.
type Option func(*JWTCodec)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// MinKeyBytes is the shortest HS256 key the codec accepts (256 bits).
const MinKeyBytes = 32

// NewJWTCodec returns a codec signing with key. Keys shorter than MinKeyBytes
// are rejected.
func NewJWTCodec(key []byte, opts ...Option) (*JWTCodec, error) {
	if len(key) == 0 {
		return nil, errors.New("jwt codec: empty signing key")
	}
	if len(key) < MinKeyBytes {
		return nil, fmt.Errorf("jwt codec: signing key is %d bits, need at least %d", len(key)*8, MinKeyBytes*8)
	}
	c := &JWTCodec{
		key: append([]byte(nil), key...),
		ttl: TokenTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ ports.TokenCodec = (*JWTCodec)(nil)

// Issue signs a token for subject. Extra claims are embedded as-is, but sub,
// iat and exp always come from the codec.
func (c *JWTCodec) Issue(subject string, extra map[string]any) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(c.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifySignatureAndParse returns the claims of a token whose signature
// verifies against the process key. Expiry is deliberately not evaluated here.
func (c *JWTCodec) VerifySignatureAndParse(token string) (*ports.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidSignature
	}
	return toTokenClaims(claims), nil
}

func (c *JWTCodec) ExtractSubject(token string) (string, error) {
	claims, err := c.VerifySignatureAndParse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsExpired reports whether exp is not strictly after the codec clock.
// Tokens that cannot be decoded, or carry no exp, count as expired.
func (c *JWTCodec) IsExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !c.now().Before(exp.Time)
}

// IsTokenValid combines the signature check, subject match and expiry check.
func (c *JWTCodec) IsTokenValid(token string, user *domain.User) bool {
	return c.Validate(token, user) == nil
}

// Validate returns ErrInvalidSignature, ErrUnknownSubject or ErrTokenExpired
// for the first check token fails against user.
func (c *JWTCodec) Validate(token string, user *domain.User) error {
	subject, err := c.ExtractSubject(token)
	if err != nil {
		return err
	}
	if user == nil || subject != user.Email {
		return domain.ErrUnknownSubject
	}
	if c.IsExpired(token) {
		return domain.ErrTokenExpired
	}
	return nil
}

func toTokenClaims(mc jwt.MapClaims) *ports.TokenClaims {
	out := &ports.TokenClaims{Extra: map[string]any{}}
	out.Subject, _ = mc.GetSubject()
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	for k, v := range mc {
		switch k {
		case "sub", "iat", "exp":
		default:
			out.Extra[k] = v
		}
	}
	return out
}
