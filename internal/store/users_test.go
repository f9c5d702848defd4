package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trade_journal/internal/domain"
	"trade_journal/internal/store/storetest"
	"trade_journal/internal/utils"
)

func newUsers(t *testing.T) *Users {
	return NewUsers(storetest.NewDB(t), utils.NewBcryptHasher(bcrypt.MinCost))
}

func TestUsers_Register(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	user, err := users.Register(ctx, " alice ", "Alice@Example.com", "password123")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleStandard, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "password123")
}

func TestUsers_Register_DuplicateEmailIgnoresCase(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	for _, email := range []string{"alice@example.com", "ALICE@EXAMPLE.COM", " Alice@example.com "} {
		_, err := users.Register(ctx, "other", email, "password456")
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail, email)
	}
}

func TestUsers_FindByEmail(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	created, err := users.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	found, err := users.FindByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.NotEmpty(t, found.PasswordHash)

	missing, err := users.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUsers_ProvisionAdmin(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	admin, err := users.Provision(ctx, "root", "root@example.com", "password123", domain.RoleAdmin)
	require.NoError(t, err)

	found, err := users.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, found.Role)

	_, err = users.Provision(ctx, "x", "x@example.com", "password123", domain.Role(42))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUsers_FindByID_NotFound(t *testing.T) {
	users := newUsers(t)

	_, err := users.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsers_List(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := users.Register(ctx, "user", email, "password123")
		require.NoError(t, err)
	}

	page, total, err := users.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "c@example.com", page[0].Email)
}

func TestUsers_List_PageBounds(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()
	_, err := users.Register(ctx, "user", "a@example.com", "password123")
	require.NoError(t, err)

	// Offset would overflow; must not wrap around to the first page
	page, total, err := users.List(ctx, math.MaxInt, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Empty(t, page)

	page, _, err = users.List(ctx, 2, 20)
	require.NoError(t, err)
	assert.Empty(t, page)

	_, _, err = users.List(ctx, 0, 20)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUsers_Register_BlankUsername(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	for _, username := range []string{"", "   ", "\t\n"} {
		_, err := users.Register(ctx, username, "blank@example.com", "password123")
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	found, err := users.FindByEmail(ctx, "blank@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)
}
