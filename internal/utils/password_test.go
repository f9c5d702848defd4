package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trade_journal/internal/domain"
)

func TestBcryptHasher_HashIsSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("correct horse")
	require.NoError(t, err)
	second, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "correct horse")
	assert.True(t, h.Verify("correct horse", first))
	assert.True(t, h.Verify("correct horse", second))
}

func TestBcryptHasher_Verify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("password123")
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
		hash      string
		want      bool
	}{
		{name: "match", plaintext: "password123", hash: hash, want: true},
		{name: "wrong password", plaintext: "password124", hash: hash, want: false},
		{name: "empty password", plaintext: "", hash: hash, want: false},
		{name: "no stored hash", plaintext: "password123", hash: "", want: false},
		{name: "corrupt hash", plaintext: "password123", hash: "not-a-bcrypt-hash", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Verify(tt.plaintext, tt.hash))
		})
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("p", 73))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotContains(t, err.Error(), "ppp")
}

func TestNewBcryptHasher_CostOutOfRange(t *testing.T) {
	h := NewBcryptHasher(1)
	hash, err := h.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestNewBcryptHasher_DummyHash(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost - 1, bcrypt.MaxCost + 1} {
		var h *BcryptHasher
		require.NotPanics(t, func() { h = NewBcryptHasher(cost) })
		require.NotEmpty(t, h.dummyHash)

		// The unknown-email path must run a real comparison at the hasher's cost
		dummyCost, err := bcrypt.Cost(h.dummyHash)
		require.NoError(t, err)
		assert.Equal(t, h.cost, dummyCost)
		assert.False(t, h.Verify("anything", ""))
	}
}
