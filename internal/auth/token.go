package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/models"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

var (
	ErrTokenMalformed        = apperr.New(apperr.KindUnauthenticated, "token malformed")
	ErrTokenSignatureInvalid = apperr.New(apperr.KindUnauthenticated, "token signature invalid")
	ErrTokenExpired          = apperr.New(apperr.KindUnauthenticated, "token expired")
	ErrSecretMissing         = apperr.New(apperr.KindMisconfiguration, "token signing secret not configured")
)

// Claims is the signed payload of a session token.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the verified identity carried by a request.
type Session struct {
	TokenID   string      `json:"-"`
	SubjectID int64       `json:"subject_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// TokenCodec issues and verifies HS256 session tokens. It holds no state
// beyond its secret, so verification never touches the datastore.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// WithTTL overrides TokenTTL.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *TokenCodec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewTokenCodec fails with ErrSecretMissing when secret is empty; it never
// falls back to a default secret.
func NewTokenCodec(secret string, opts ...CodecOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	c := &TokenCodec{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for the given user and returns it together with the
// session it encodes.
func (c *TokenCodec) Issue(userID int64, email string, role models.Role) (string, Session, error) {
	now := c.now()
	exp := ceilSecond(now.Add(c.ttl))

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", Session{}, apperr.Wrap(apperr.KindInternal, "sign token", err)
	}

	return signed, sessionFromClaims(userID, &claims), nil
}

// Verify checks the signature and expiry of tokenStr and returns its session.
// Failures are one of ErrTokenMalformed, ErrTokenSignatureInvalid or
// ErrTokenExpired.
func (c *TokenCodec) Verify(tokenStr string) (Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		// exp is whole seconds and the parser rejects now == exp; a token is
		// still valid at that instant.
		jwt.WithLeeway(time.Nanosecond),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Session{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Session{}, ErrTokenSignatureInvalid
		default:
			return Session{}, ErrTokenMalformed
		}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Session{}, ErrTokenMalformed
	}
	if !claims.Role.Valid() {
		return Session{}, ErrTokenMalformed
	}

	return sessionFromClaims(userID, &claims), nil
}

// ceilSecond rounds t up to a whole second, the resolution of exp. Rounding
// down would end a session before its full TTL.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

func sessionFromClaims(userID int64, claims *Claims) Session {
	s := Session{
		TokenID:   claims.ID,
		SubjectID: userID,
		Email:     claims.Email,
		Role:      claims.Role,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}
