package api

import (
	"context"       // Store and cache calls
	"encoding/json" // Cached response bodies
	"errors"        // Error classification
	"net/http"      // HTTP status codes
	"strconv"       // Path id parsing
	"time"          // Cache TTL and timestamps

	"trade_journal/internal/domain"     // Importing domain models
	"trade_journal/internal/metrics"    // Denial counters
	"trade_journal/internal/middleware" // Principal lookup
	"trade_journal/internal/policy"     // Ownership decisions
	"trade_journal/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding error classification
	"github.com/redis/go-redis/v9"           // Redis client
	"github.com/shopspring/decimal"          // Exact prices
	"github.com/sirupsen/logrus"             // Logging library
)

// TradeStore persists trades
type TradeStore interface {
	Create(ctx context.Context, trade *domain.Trade) error
	FindByID(ctx context.Context, id uint) (*domain.Trade, error)
	List(ctx context.Context, scope policy.Scope) ([]domain.Trade, error)
	Update(ctx context.Context, trade *domain.Trade) error
	Delete(ctx context.Context, id uint) error
}

// CreateTradeRequest is the body of POST /api/trades. Any owner field sent
// by the client is not part of the schema and is dropped.
type CreateTradeRequest struct {
	Symbol      string           `json:"symbol" binding:"required"`     // Ticker
	EntryPrice  *decimal.Decimal `json:"entryPrice" binding:"required"` // Number or numeric string
	TargetPrice *decimal.Decimal `json:"targetPrice"`                   // Optional
	Notes       *string          `json:"notes"`                         // Optional
}

// UpdateTradeRequest is the body of PUT /api/trades/:id; absent fields are unchanged
type UpdateTradeRequest struct {
	Symbol      *string             `json:"symbol"`
	EntryPrice  *decimal.Decimal    `json:"entryPrice"`
	TargetPrice *decimal.Decimal    `json:"targetPrice"`
	Status      *domain.TradeStatus `json:"status"`
	Notes       *string             `json:"notes"`
}

// OwnerSummary is the owner detail shown to admins
type OwnerSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TradeResponse is a trade as returned to clients. Owner is the owner id,
// or an OwnerSummary in admin listings.
type TradeResponse struct {
	ID          uint               `json:"id"`
	Owner       any                `json:"owner"`
	Symbol      string             `json:"symbol"`
	EntryPrice  decimal.Decimal    `json:"entryPrice"`
	TargetPrice *decimal.Decimal   `json:"targetPrice,omitempty"`
	Status      domain.TradeStatus `json:"status"`
	Notes       string             `json:"notes,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func newTradeResponse(t domain.Trade, withOwner bool) TradeResponse {
	resp := TradeResponse{
		ID:          t.ID,
		Owner:       t.OwnerID,
		Symbol:      t.Symbol,
		EntryPrice:  t.EntryPrice,
		TargetPrice: t.TargetPrice,
		Status:      t.Status,
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
	}
	if withOwner && t.Owner != nil {
		resp.Owner = OwnerSummary{ID: t.Owner.ID, Username: t.Owner.Username, Email: t.Owner.Email}
	}
	return resp
}

// Listing cache keys. Entries are keyed by generation: a listing read
// before a write may still be stored, but only under a retired generation.
const (
	tradesGenerationKey  = "trades:gen"
	tradesAllCacheKey    = "trades:all"
	tradesOwnerKeyPrefix = "trades:owner:"
)

func tradeListCacheKey(scope policy.Scope, gen int64) string {
	key := tradesAllCacheKey
	if !scope.All {
		key = tradesOwnerKeyPrefix + strconv.FormatUint(uint64(scope.OwnerID), 10)
	}
	return key + ":g" + strconv.FormatInt(gen, 10)
}

// invalidateTradeLists retires every cached listing. Called after the write
// has been committed.
func invalidateTradeLists(ctx context.Context, rdb *redis.Client, ownerID uint) {
	gen, err := utils.BumpCacheGeneration(ctx, rdb, tradesGenerationKey)
	if err == nil && gen > 0 {
		// Drop the entries that just went stale; older ones expire on their own
		old := gen - 1
		err = utils.DeleteCache(ctx, rdb,
			tradeListCacheKey(policy.Scope{All: true}, old),
			tradeListCacheKey(policy.Scope{OwnerID: ownerID}, old))
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"owner_id": ownerID,
			"error":    err.Error(),
		}).Warn("Failed to invalidate trade cache")
	}
}

// requirePrincipal fetches the request principal or answers 401
func requirePrincipal(c *gin.Context) (domain.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
	}
	return principal, ok
}

// loadTrade resolves :id. Malformed ids are reported as not found.
func loadTrade(c *gin.Context, trades TradeStore) (*domain.Trade, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 || uint64(uint(id)) != id {
		respondError(c, domain.ErrNotFound)
		return nil, false
	}
	trade, err := trades.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return trade, true
}

// deny records and renders a policy denial
func deny(c *gin.Context, principal domain.Principal, operation string, err error) {
	metrics.AccessDenied.WithLabelValues(operation).Inc()
	logrus.WithFields(logrus.Fields{
		"user_id":   principal.ID,
		"operation": operation,
		"path":      c.Request.URL.Path,
	}).Warn("Trade access denied")
	respondError(c, err)
}

// ListTradesHandler returns all trades for admins and the caller's own trades otherwise
func ListTradesHandler(trades TradeStore, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		scope := policy.CanList(principal) // Admins bypass filtering

		// Generation is read before the query so a concurrent write retires this entry
		gen, err := utils.CacheGeneration(ctx, rdb, tradesGenerationKey)
		useCache := err == nil
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Trade cache generation read failed")
		}
		cacheKey := tradeListCacheKey(scope, gen)

		if useCache {
			var cached json.RawMessage // Try to get cached response
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			if err == nil && found {
				c.Header("X-Cache", "HIT")
				c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
				return
			}
			if err != nil {
				logrus.WithField("error", err.Error()).Warn("Trade cache read failed")
			}
		}

		list, err := trades.List(ctx, scope)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]TradeResponse, len(list))
		for i, t := range list {
			resp[i] = newTradeResponse(t, scope.All) // Owner detail for admins only
		}
		// Cache the response for future requests
		if useCache {
			if err := utils.SetCache(ctx, rdb, cacheKey, resp, ttl); err != nil {
				logrus.WithField("error", err.Error()).Warn("Trade cache write failed")
			}
		}
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, resp)
	}
}

// CreateTradeHandler records a trade owned by the caller
func CreateTradeHandler(trades TradeStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		if !policy.CanCreate(principal) {
			deny(c, principal, "create", domain.ErrForbidden)
			return
		}
		var req CreateTradeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol and Entry Price are required"})
				return
			}
			// Type errors, e.g. a price that is not a number
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: prices must be numeric"})
			return
		}
		trade, err := domain.NewTrade(principal.ID, domain.TradeFields{
			Symbol:      &req.Symbol,
			EntryPrice:  req.EntryPrice,
			TargetPrice: req.TargetPrice,
			Notes:       req.Notes,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if err := trades.Create(c.Request.Context(), trade); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  principal.ID, // Owner
			"trade_id": trade.ID,     // New trade
			"symbol":   trade.Symbol, // Ticker
		}).Info("Trade created")
		invalidateTradeLists(c.Request.Context(), rdb, trade.OwnerID)
		c.JSON(http.StatusCreated, newTradeResponse(*trade, false))
	}
}

// GetTradeHandler returns one trade to its owner or an admin
func GetTradeHandler(trades TradeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		trade, ok := loadTrade(c, trades) // Existence before authorization
		if !ok {
			return
		}
		if err := policy.AuthorizeRead(principal, trade); err != nil {
			deny(c, principal, "read", err)
			return
		}
		c.JSON(http.StatusOK, newTradeResponse(*trade, false))
	}
}

// UpdateTradeHandler edits a trade the caller owns, or any trade for admins
func UpdateTradeHandler(trades TradeStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		trade, ok := loadTrade(c, trades) // Existence before authorization
		if !ok {
			return
		}
		if err := policy.AuthorizeMutate(principal, trade); err != nil {
			deny(c, principal, "update", err)
			return
		}
		var req UpdateTradeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: prices must be numeric"})
			return
		}
		err := trade.Apply(domain.TradeFields{
			Symbol:      req.Symbol,
			EntryPrice:  req.EntryPrice,
			TargetPrice: req.TargetPrice,
			Status:      req.Status,
			Notes:       req.Notes,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if err := trades.Update(c.Request.Context(), trade); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  principal.ID,  // Actor
			"owner_id": trade.OwnerID, // Differs from actor for admin edits
			"trade_id": trade.ID,      // Trade
		}).Info("Trade updated")
		invalidateTradeLists(c.Request.Context(), rdb, trade.OwnerID)
		c.JSON(http.StatusOK, newTradeResponse(*trade, false))
	}
}

// DeleteTradeHandler removes a trade the caller owns, or any trade for admins
func DeleteTradeHandler(trades TradeStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		trade, ok := loadTrade(c, trades) // Existence before authorization
		if !ok {
			return
		}
		if err := policy.AuthorizeMutate(principal, trade); err != nil {
			deny(c, principal, "delete", err)
			return
		}
		if err := trades.Delete(c.Request.Context(), trade.ID); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  principal.ID,  // Actor
			"owner_id": trade.OwnerID, // Owner
			"trade_id": trade.ID,      // Trade
		}).Info("Trade deleted")
		invalidateTradeLists(c.Request.Context(), rdb, trade.OwnerID)
		c.JSON(http.StatusOK, gin.H{"id": trade.ID, "message": "Trade deleted successfully"})
	}
}
