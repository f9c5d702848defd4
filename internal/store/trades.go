package store

import (
	"context" // Request scoped queries
	"errors"  // Error classification
	"fmt"     // Error wrapping

	"trade_journal/internal/domain" // Importing domain models
	"trade_journal/internal/policy" // Listing scope

	"gorm.io/gorm" // GORM ORM library
)

// Trades persists trade records
type Trades struct {
	db *gorm.DB
}

// NewTrades creates a trade store backed by db
func NewTrades(db *gorm.DB) *Trades {
	return &Trades{db: db}
}

// Create inserts trade and fills its id and creation time
func (s *Trades) Create(ctx context.Context, trade *domain.Trade) error {
	const op = "store.Trades.Create"
	if err := s.db.WithContext(ctx).Omit("Owner").Create(trade).Error; err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	return nil
}

// FindByID returns the trade with id or domain.ErrNotFound
func (s *Trades) FindByID(ctx context.Context, id uint) (*domain.Trade, error) {
	const op = "store.Trades.FindByID"
	var trade domain.Trade
	err := s.db.WithContext(ctx).First(&trade, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	return &trade, nil
}

// List returns the trades visible under scope, newest first. Owners are
// preloaded only for unrestricted (admin) listings.
func (s *Trades) List(ctx context.Context, scope policy.Scope) ([]domain.Trade, error) {
	const op = "store.Trades.List"
	query := s.db.WithContext(ctx).Model(&domain.Trade{})
	if scope.All {
		query = query.Preload("Owner")
	} else {
		query = query.Where("owner_id = ?", scope.OwnerID) // Filter by owner
	}
	trades := []domain.Trade{}
	if err := query.Order("created_at desc").Order("id desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
	}
	return trades, nil
}

// Update writes the editable columns of trade. Owner and creation time are
// never written.
func (s *Trades) Update(ctx context.Context, trade *domain.Trade) error {
	const op = "store.Trades.Update"
	res := s.db.WithContext(ctx).Model(&domain.Trade{ID: trade.ID}).
		Select("symbol", "entry_price", "target_price", "status", "notes").
		Updates(map[string]any{
			"symbol":       trade.Symbol,
			"entry_price":  trade.EntryPrice,
			"target_price": trade.TargetPrice,
			"status":       trade.Status,
			"notes":        trade.Notes,
		})
	if res.Error != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		// Deleted between lookup and update
		if _, err := s.FindByID(ctx, trade.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Delete removes the trade with id or returns domain.ErrNotFound
func (s *Trades) Delete(ctx context.Context, id uint) error {
	const op = "store.Trades.Delete"
	res := s.db.WithContext(ctx).Delete(&domain.Trade{}, id)
	if res.Error != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
