// Package policy decides what an authenticated principal may do with a
// trade. Every function is pure and safe for concurrent use.
package policy

import (
	"fmt" // Error wrapping

	"trade_journal/internal/domain" // Principal, Trade and error taxonomy
)

// Scope limits which trades a listing may return
type Scope struct {
	All     bool // Admins bypass filtering
	OwnerID uint // Set when All is false
}

// CanRead reports whether p may view trade
func CanRead(p domain.Principal, trade *domain.Trade) bool {
	return isAdminOrOwner(p, trade)
}

// CanList returns the listing scope for p
func CanList(p domain.Principal) Scope {
	switch p.Role {
	case domain.RoleAdmin:
		return Scope{All: true}
	case domain.RoleStandard:
		return Scope{OwnerID: p.ID}
	}
	// Unknown roles see only their own rows
	return Scope{OwnerID: p.ID}
}

// CanCreate reports whether p may create trades. The new trade's owner is
// always p.ID (see domain.NewTrade).
func CanCreate(p domain.Principal) bool {
	switch p.Role {
	case domain.RoleAdmin, domain.RoleStandard:
		return p.ID != 0
	}
	return false
}

// CanMutate reports whether p may update or delete trade. Callers check
// that the trade exists first.
func CanMutate(p domain.Principal, trade *domain.Trade) bool {
	return isAdminOrOwner(p, trade)
}

// AuthorizeRead returns domain.ErrForbidden when CanRead denies
func AuthorizeRead(p domain.Principal, trade *domain.Trade) error {
	if !CanRead(p, trade) {
		return fmt.Errorf("policy: read trade %d: %w", trade.ID, domain.ErrForbidden)
	}
	return nil
}

// AuthorizeMutate returns domain.ErrForbidden when CanMutate denies
func AuthorizeMutate(p domain.Principal, trade *domain.Trade) error {
	if !CanMutate(p, trade) {
		return fmt.Errorf("policy: modify trade %d: %w", trade.ID, domain.ErrForbidden)
	}
	return nil
}

func isAdminOrOwner(p domain.Principal, trade *domain.Trade) bool {
	if trade == nil {
		return false
	}
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleStandard:
		return p.ID != 0 && p.ID == trade.OwnerID
	}
	return false
}
