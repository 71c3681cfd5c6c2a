package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose selects the secret a token is signed and verified with.
// Each purpose also becomes the token audience, so a token minted for one
// purpose never verifies for another.
type TokenPurpose int

const (
	PurposeSession TokenPurpose = iota + 1
	PurposeResetPassword
)

func (p TokenPurpose) String() string {
	switch p {
	case PurposeSession:
		return "session"
	case PurposeResetPassword:
		return "reset_password"
	default:
		return "unknown"
	}
}

var (
	errUnknownPurpose = errors.New("unknown token purpose")
	errEmptySubject   = errors.New("token subject is empty")
)

// JWTManager handles generation and validation of HS256 tokens.
type JWTManager struct {
	secrets map[TokenPurpose][]byte
	now     func() time.Time
}

func NewJWTManager(sessionSecret, resetPasswordSecret string) *JWTManager {
	return &JWTManager{
		secrets: map[TokenPurpose][]byte{
			PurposeSession:       []byte(sessionSecret),
			PurposeResetPassword: []byte(resetPasswordSecret),
		},
		now: time.Now,
	}
}

// WithClock replaces the time source used for iat/exp and for verification.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

// Claims carries the subject (user id) plus iat/exp/aud.
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

type TokenParams struct {
	SubjectID string
	Purpose   TokenPurpose
	ExpiresIn time.Duration
}

// GenerateAccessToken signs a token for p.SubjectID and returns it with its expiry.
func (m *JWTManager) GenerateAccessToken(p TokenParams) (string, time.Time, error) {
	secret, ok := m.secrets[p.Purpose]
	if !ok || len(secret) == 0 {
		return "", time.Time{}, errUnknownPurpose
	}
	if p.SubjectID == "" {
		return "", time.Time{}, errEmptySubject
	}
	now := m.now()
	exp := now.Add(p.ExpiresIn)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.SubjectID,
			Audience:  jwt.ClaimStrings{p.Purpose.String()},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

// VerifyToken returns the claims of a valid token for purpose, or nil when the
// token is malformed, badly signed, expired or minted for another purpose.
func (m *JWTManager) VerifyToken(tokenStr string, purpose TokenPurpose) *Claims {
	secret, ok := m.secrets[purpose]
	if !ok || len(secret) == 0 || tokenStr == "" {
		return nil
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(purpose.String()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil
	}
	return claims
}
