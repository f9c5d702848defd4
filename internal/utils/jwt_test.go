package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_journal/internal/domain"
)

const testSecret = "test_secret_key_1234567890_abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, 0)

	tests := []struct {
		name string
		id   uint
		role domain.Role
	}{
		{name: "standard user", id: 1, role: domain.RoleStandard},
		{name: "admin user", id: 2, role: domain.RoleAdmin},
		{name: "large id", id: 4294967295, role: domain.RoleStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := m.Issue(tt.id, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			p, err := m.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, domain.Principal{ID: tt.id, Role: tt.role}, p)
		})
	}
}

func TestTokenManager_ThirtyDayWindow(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager(testSecret, 0).WithClock(func() time.Time { return issued })

	token, err := m.Issue(5, domain.RoleStandard)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(30*24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	justBefore := m.WithClock(func() time.Time { return issued.Add(30*24*time.Hour - time.Minute) })
	_, err = justBefore.Verify(token)
	assert.NoError(t, err)

	after := m.WithClock(func() time.Time { return issued.Add(30*24*time.Hour + time.Minute) })
	_, err = after.Verify(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-31 * 24 * time.Hour)
	issuer := NewTokenManager(testSecret, 0).WithClock(func() time.Time { return past })

	token, err := issuer.Issue(1, domain.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, 0).Verify(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
	assert.NotErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenManager_InvalidTokens(t *testing.T) {
	m := NewTokenManager(testSecret, 0)
	valid, err := m.Issue(1, domain.RoleStandard)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "invalid.token.here"},
		{name: "tampered signature", token: valid + "x"},
		{name: "tampered payload", token: parts[0] + "." + parts[1] + "x." + parts[2]},
		{name: "wrong secret", token: signWith(t, jwt.SigningMethodHS256, []byte("another_secret_entirely_0123456789"), validClaims("standard"))},
		{name: "alg none", token: signWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims("admin"))},
		{name: "hs512 with right secret", token: signWith(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("admin"))},
		{name: "unknown role", token: signWith(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("superuser"))},
		{name: "no expiry", token: signWith(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{UserID: 1, Role: "standard"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
			assert.Equal(t, domain.Principal{}, p)
		})
	}
}

func TestTokenManager_ExpiredAndForgedIsInvalid(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	token := signWith(t, jwt.SigningMethodHS256, []byte("forger_secret_forger_secret_0000"), claims)

	_, err := NewTokenManager(testSecret, 0).Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func validClaims(role string) Claims {
	return Claims{
		UserID: 1,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func signWith(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}
