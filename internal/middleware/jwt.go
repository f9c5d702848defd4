package middleware

import (
	"errors"   // Error classification
	"fmt"      // Error wrapping
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"trade_journal/internal/domain"  // Principal and error taxonomy
	"trade_journal/internal/metrics" // Auth failure counters

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// principalKey is where the verified principal lives in the gin context
const principalKey = "principal"

var (
	errMissingHeader   = errors.New("missing authorization header")
	errMalformedHeader = errors.New("malformed authorization header")
)

// TokenVerifier turns a bearer token into a principal
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Gate is the single place a request's principal is established
type Gate struct {
	verifier TokenVerifier
}

// NewGate creates an access gate using verifier
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Authenticate verifies a raw Authorization header. Every failure wraps
// domain.ErrUnauthenticated; the underlying cause is kept for logging only.
func (g *Gate) Authenticate(header string) (domain.Principal, error) {
	if strings.TrimSpace(header) == "" {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, errMissingHeader)
	}
	parts := strings.Fields(header) // Expect "Bearer <token>"
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, errMalformedHeader)
	}
	principal, err := g.verifier.Verify(parts[1])
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return principal, nil
}

// failureReason classifies an Authenticate error for metrics and logs
func failureReason(err error) string {
	switch {
	case errors.Is(err, errMissingHeader):
		return metrics.ReasonMissingHeader
	case errors.Is(err, errMalformedHeader):
		return metrics.ReasonMalformed
	case errors.Is(err, domain.ErrExpiredToken):
		return metrics.ReasonExpiredToken
	}
	return metrics.ReasonInvalidToken
}

// JWTAuthMiddleware validates bearer tokens and stores the principal in the context
func JWTAuthMiddleware(gate *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := gate.Authenticate(c.GetHeader("Authorization")) // Verify Authorization header
		if err != nil {
			reason := failureReason(err)
			metrics.AuthFailures.WithLabelValues(reason).Inc()
			logrus.WithFields(logrus.Fields{
				"reason":     reason,       // Internal distinction only
				"path":       c.FullPath(), // Route template
				"client_ip":  c.ClientIP(), // Caller address
				"request_id": c.GetString(requestIDKey),
			}).Warn("Authentication failed")
			// Same body for every cause so the response is not an oracle
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}
		c.Set(principalKey, principal) // Store principal in context
		c.Next()                       // Proceed to the next handler
	}
}

// PrincipalFrom returns the principal stored by JWTAuthMiddleware
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
