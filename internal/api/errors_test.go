package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trade_journal/internal/domain"
	"trade_journal/internal/middleware"
	"trade_journal/internal/policy"
	"trade_journal/internal/utils"
)

type TradeStoreMock struct {
	mock.Mock
}

func (m *TradeStoreMock) Create(ctx context.Context, trade *domain.Trade) error {
	return m.Called(ctx, trade).Error(0)
}

func (m *TradeStoreMock) FindByID(ctx context.Context, id uint) (*domain.Trade, error) {
	args := m.Called(ctx, id)
	trade, _ := args.Get(0).(*domain.Trade)
	return trade, args.Error(1)
}

func (m *TradeStoreMock) List(ctx context.Context, scope policy.Scope) ([]domain.Trade, error) {
	args := m.Called(ctx, scope)
	trades, _ := args.Get(0).([]domain.Trade)
	return trades, args.Error(1)
}

func (m *TradeStoreMock) Update(ctx context.Context, trade *domain.Trade) error {
	return m.Called(ctx, trade).Error(0)
}

func (m *TradeStoreMock) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newMockRouter(t *testing.T, trades TradeStore) (*gin.Engine, string) {
	tokens := utils.NewTokenManager(testSecret, 0)
	token, err := tokens.Issue(1, domain.RoleStandard)
	require.NoError(t, err)
	r := NewRouter(Deps{Trades: trades, Issuer: tokens, Gate: middleware.NewGate(tokens)})
	return r, token
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStoreFailure_IsInternal(t *testing.T) {
	dbErr := fmt.Errorf("store.Trades.List: %w: %w", domain.ErrInternal, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	trades := new(TradeStoreMock)
	trades.On("List", mock.Anything, policy.Scope{OwnerID: 1}).Return(nil, dbErr)
	r, token := newMockRouter(t, trades)

	w := serve(r, http.MethodGet, "/api/trades", token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused") // Test mode shows detail

	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	w = serve(r, http.MethodGet, "/api/trades", token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	trades.AssertExpectations(t)
}

func TestRespondError_Taxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation message", err: fmt.Errorf("op: %w", domain.Invalid("symbol must be 1-20 characters")), want: http.StatusBadRequest},
		{name: "bare validation", err: domain.ErrValidation, want: http.StatusBadRequest},
		{name: "duplicate", err: fmt.Errorf("op: %w", domain.ErrDuplicateEmail), want: http.StatusBadRequest},
		{name: "unauthenticated", err: domain.ErrUnauthenticated, want: http.StatusUnauthorized},
		{name: "forbidden", err: fmt.Errorf("policy: %w", domain.ErrForbidden), want: http.StatusForbidden},
		{name: "not found", err: fmt.Errorf("store: %w", domain.ErrNotFound), want: http.StatusNotFound},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestUpdate_NotFoundBeforeForbidden(t *testing.T) {
	trades := new(TradeStoreMock)
	trades.On("FindByID", mock.Anything, uint(77)).Return(nil, fmt.Errorf("store: %w", domain.ErrNotFound))
	trades.On("FindByID", mock.Anything, uint(78)).Return(&domain.Trade{ID: 78, OwnerID: 2}, nil)
	r, token := newMockRouter(t, trades)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPut, "/api/trades/77", token).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPut, "/api/trades/78", token).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, "/api/trades/78", token).Code)
	trades.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	trades.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
