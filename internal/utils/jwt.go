package utils

import (
	"errors" // Error classification
	"fmt"    // Error wrapping
	"time"   // Token validity window

	"trade_journal/internal/domain" // Principal and error taxonomy

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// DefaultTokenTTL is how long an issued token stays valid
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims carried by every token
type Claims struct {
	UserID               uint   `json:"user_id"` // Principal id
	Role                 string `json:"role"`    // Principal role name
	jwt.RegisteredClaims        // Standard JWT claims (iat, exp)
}

// TokenManager issues and verifies signed bearer tokens. The secret is set
// once at construction and never mutated, so one manager is shared by all
// requests without locking.
type TokenManager struct {
	secret []byte           // HMAC signing key
	ttl    time.Duration    // Validity window
	now    func() time.Time // Clock, replaceable in tests
}

// NewTokenManager creates a manager signing with secret; ttl <= 0 uses DefaultTokenTTL
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the manager that reads time from now
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

// Issue creates a token for the given principal id and role
func (m *TokenManager) Issue(userID uint, role domain.Role) (string, error) {
	const op = "utils.TokenManager.Issue"
	if _, err := domain.ParseRole(role.String()); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	issuedAt := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString(m.secret)                // Sign the token with the secret
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify checks the signature, then the expiry, and returns the embedded
// principal. Failures wrap domain.ErrInvalidToken or domain.ErrExpiredToken.
func (m *TokenManager) Verify(tokenStr string) (domain.Principal, error) {
	const op = "utils.TokenManager.Verify"
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		// Only HMAC keys are accepted; rejects "none" and RSA/ECDSA confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		// Signature problems are reported before claim validation by the library
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, fmt.Errorf("%s: %w", op, domain.ErrExpiredToken)
		}
		return domain.Principal{}, fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return domain.Principal{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidToken)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil || claims.UserID == 0 {
		return domain.Principal{}, fmt.Errorf("%s: bad claims: %w", op, domain.ErrInvalidToken)
	}
	return domain.Principal{ID: claims.UserID, Role: role}, nil
}
