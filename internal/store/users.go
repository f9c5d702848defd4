package store

import (
	"context" // Request scoped queries
	"errors"  // Error classification
	"fmt"     // Error wrapping
	"math"    // Offset bounds
	"strings" // Email normalization

	"trade_journal/internal/domain" // Importing domain models
	"trade_journal/internal/utils"  // Password hashing

	"gorm.io/gorm" // GORM ORM library
)

// Users is the credential store. It is the only writer of User records and
// never persists a plaintext password.
type Users struct {
	db     *gorm.DB
	hasher utils.PasswordHasher
}

// NewUsers creates a credential store backed by db
func NewUsers(db *gorm.DB, hasher utils.PasswordHasher) *Users {
	return &Users{db: db, hasher: hasher}
}

// NormalizeEmail lower-cases and trims an email so comparisons ignore case
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a standard user. A taken email (any case) fails with
// domain.ErrDuplicateEmail.
func (s *Users) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.Provision(ctx, username, email, password, domain.RoleStandard)
}

// Provision creates a user with an explicit role. Only operator tooling
// calls it with domain.RoleAdmin; there is no HTTP path to it.
func (s *Users) Provision(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	const op = "store.Users.Provision"
	if _, err := domain.ParseRole(role.String()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrValidation)
	}
	username = strings.TrimSpace(username)
	if username == "" || len([]rune(username)) > domain.MaxUsernameLength {
		return nil, fmt.Errorf("%s: %w", op, domain.Invalid("username must be 1-%d characters", domain.MaxUsernameLength))
	}
	email = NormalizeEmail(email)
	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrDuplicateEmail)
	}
	hash, err := s.hasher.Hash(password) // Hash before anything touches the database
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// Unique index catches a concurrent registration with the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	return user, nil
}

// FindByEmail returns the user with email (any case), or nil when none exists.
// The returned record includes the password hash for login verification.
func (s *Users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "store.Users.FindByEmail"
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	return &user, nil
}

// FindByID returns the user with id or domain.ErrNotFound
func (s *Users) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	const op = "store.Users.FindByID"
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	return &user, nil
}

// List returns one page of users ordered by id, plus the total count. Pages
// whose offset does not fit the database's 32-bit range are empty.
func (s *Users) List(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	const op = "store.Users.List"
	if page < 1 || pageSize < 1 {
		return nil, 0, fmt.Errorf("%s: %w", op, domain.Invalid("page and page size must be positive"))
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	users := []domain.User{}
	if page-1 > math.MaxInt32/pageSize {
		return users, total, nil // Past any real row; (page-1)*pageSize would overflow
	}
	offset := (page - 1) * pageSize // Calculate offset for pagination
	if err := s.db.WithContext(ctx).Order("id").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	return users, total, nil
}
