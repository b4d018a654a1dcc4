package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenErrorKind int

const (
	TokenMalformed TokenErrorKind = iota + 1
	TokenInvalidSignature
	TokenExpired
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenMalformed:
		return "malformed"
	case TokenInvalidSignature:
		return "invalid signature"
	case TokenExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + e.Kind.String()
	}
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// IsTokenError reports whether err is a *TokenError of the given kind.
func IsTokenError(err error, kind TokenErrorKind) bool {
	var tokenErr *TokenError
	return errors.As(err, &tokenErr) && tokenErr.Kind == kind
}

type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

type TokenManager struct {
	issuer     string
	signingKey []byte
	method     jwt.SigningMethod
	now        func() time.Time
}

// NewTokenManager accepts only HMAC algorithms (HS256, HS384, HS512).
func NewTokenManager(issuer string, signingKey []byte, algorithm string) (*TokenManager, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("empty signing key")
	}

	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}

	return &TokenManager{
		issuer:     issuer,
		signingKey: signingKey,
		method:     method,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of m reading time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

func (m *TokenManager) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := m.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(m.method, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    m.issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks the signature with the configured algorithm only, then
// the time claims. The alg header of the token is never trusted.
func (m *TokenManager) Validate(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) {
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, &TokenError{Kind: TokenMalformed, Err: err}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, &TokenError{Kind: TokenInvalidSignature, Err: err}
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, &TokenError{Kind: TokenExpired, Err: err}
		default:
			return nil, &TokenError{Kind: TokenMalformed, Err: err}
		}
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, &TokenError{Kind: TokenMalformed, Err: errors.New("missing subject")}
	}

	return &Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
