package domain

import (
	"fmt"     // Error wrapping
	"strings" // Symbol normalization
	"time"    // Timestamps

	"github.com/shopspring/decimal" // Exact decimal prices
)

// TradeStatus is inert metadata: nothing transitions it automatically
type TradeStatus string

const (
	StatusOpen    TradeStatus = "Open"    // Default on creation
	StatusClosed  TradeStatus = "Closed"  // Position exited
	StatusPending TradeStatus = "Pending" // Order not filled yet
)

// Valid reports whether s is one of the known statuses
func (s TradeStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusPending:
		return true
	}
	return false
}

const (
	MaxSymbolLength = 20  // Longest accepted ticker
	MaxNotesLength  = 500 // Longest accepted note
	PriceScale      = 8   // Fractional digits of the price columns
	PriceIntDigits  = 12  // Integer digits of the price columns
)

// maxPrice is the smallest value a decimal(20,8) column cannot hold
var maxPrice = decimal.New(1, PriceIntDigits)

// Trade Model
type Trade struct {
	ID          uint             `gorm:"primaryKey" json:"id"`                            // Primary key
	OwnerID     uint             `gorm:"index;not null" json:"owner"`                     // Creator, fixed forever
	Owner       *User            `gorm:"foreignKey:OwnerID" json:"-"`                     // Loaded for admin listings only
	Symbol      string           `gorm:"size:20;not null" json:"symbol"`                  // Upper-cased ticker
	EntryPrice  decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"entryPrice"`   // Required
	TargetPrice *decimal.Decimal `gorm:"type:decimal(20,8)" json:"targetPrice,omitempty"` // Optional
	Status      TradeStatus      `gorm:"size:16;not null;default:Open" json:"status"`     // Open, Closed or Pending
	Notes       string           `gorm:"size:500" json:"notes,omitempty"`                 // Free text
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"createdAt"`                 // Set once on insert
}

// TradeFields carries the user-editable part of a trade
type TradeFields struct {
	Symbol      *string
	EntryPrice  *decimal.Decimal
	TargetPrice *decimal.Decimal
	Status      *TradeStatus
	Notes       *string
}

// NormalizeSymbol trims and upper-cases a ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NewTrade builds a trade owned by ownerID. The owner always comes from the
// authenticated principal, never from request input.
func NewTrade(ownerID uint, f TradeFields) (*Trade, error) {
	const op = "domain.NewTrade"
	if f.Symbol == nil || f.EntryPrice == nil {
		return nil, fmt.Errorf("%s: %w", op, Invalid("Symbol and Entry Price are required"))
	}
	t := &Trade{OwnerID: ownerID, Status: StatusOpen}
	if err := t.Apply(f); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply validates and copies the non-nil fields onto the trade.
// OwnerID, ID and CreatedAt are never touched.
func (t *Trade) Apply(f TradeFields) error {
	const op = "domain.Trade.Apply"
	next := *t
	if f.Symbol != nil {
		next.Symbol = NormalizeSymbol(*f.Symbol)
		if next.Symbol == "" || len(next.Symbol) > MaxSymbolLength {
			return fmt.Errorf("%s: %w", op, Invalid("symbol must be 1-%d characters", MaxSymbolLength))
		}
	}
	if f.EntryPrice != nil {
		if err := checkPrice("entryPrice", *f.EntryPrice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		next.EntryPrice = *f.EntryPrice
	}
	if f.TargetPrice != nil {
		if err := checkPrice("targetPrice", *f.TargetPrice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		tp := *f.TargetPrice
		next.TargetPrice = &tp
	}
	if f.Status != nil {
		if !f.Status.Valid() {
			return fmt.Errorf("%s: %w", op, Invalid("status must be Open, Closed or Pending"))
		}
		next.Status = *f.Status
	}
	if f.Notes != nil {
		if len([]rune(*f.Notes)) > MaxNotesLength {
			return fmt.Errorf("%s: %w", op, Invalid("notes must be at most %d characters", MaxNotesLength))
		}
		next.Notes = *f.Notes
	}
	*t = next
	return nil
}

// checkPrice accepts only positive prices the price columns store exactly.
// Digit counts are checked before any comparison that rescales p, so
// exponents like 1e999999999 stay cheap.
func checkPrice(field string, p decimal.Decimal) error {
	if !p.IsPositive() {
		return Invalid("%s must be a positive number", field)
	}
	exp := int(p.Exponent())
	if p.NumDigits()+exp > PriceIntDigits {
		return Invalid("%s must be less than %s", field, maxPrice.String())
	}
	// Extra fractional digits would be rounded away on insert, possibly to zero
	if exp < -PriceScale {
		if -exp-PriceScale > p.NumDigits() || !p.Equal(p.Truncate(PriceScale)) {
			return Invalid("%s must have at most %d decimal places", field, PriceScale)
		}
	}
	return nil
}
