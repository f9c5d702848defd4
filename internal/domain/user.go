package domain

import (
	"database/sql/driver" // Valuer interface for GORM
	"fmt"                 // Error formatting
	"time"                // Timestamps
)

// Role is the closed set of roles a user can hold
type Role uint8

const (
	RoleStandard Role = iota + 1 // Regular journal owner
	RoleAdmin                    // Sees and manages every user's trades
)

// String returns the stored/serialized name of the role
func (r Role) String() string {
	switch r {
	case RoleStandard:
		return "standard"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// ParseRole converts a stored name back into a Role
func ParseRole(s string) (Role, error) {
	switch s {
	case "standard":
		return RoleStandard, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("domain.ParseRole: unknown role %q", s)
}

// MarshalText encodes the role as its name (used by encoding/json)
func (r Role) MarshalText() ([]byte, error) {
	if r != RoleStandard && r != RoleAdmin {
		return nil, fmt.Errorf("domain.Role: invalid role %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role as a string column
func (r Role) Value() (driver.Value, error) {
	if r != RoleStandard && r != RoleAdmin {
		return nil, fmt.Errorf("domain.Role: invalid role %d", r)
	}
	return r.String(), nil
}

// Scan reads the role from a string or []byte column
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	}
	return fmt.Errorf("domain.Role: cannot scan %T", src)
}

// MaxUsernameLength bounds the trimmed display name
const MaxUsernameLength = 64

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Username     string    `gorm:"size:64;not null" json:"username"`           // Display name, not unique
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // Lower-cased, unique
	PasswordHash string    `gorm:"not null" json:"-"`                          // Never serialized outward
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`      // standard or admin
	CreatedAt    time.Time `json:"created_at"`                                 // Registration time
}
