package api

import (
	"context"  // Store calls
	"net/http" // HTTP status codes

	"trade_journal/internal/domain"  // Importing domain models
	"trade_journal/internal/metrics" // Security counters
	"trade_journal/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// UserStore is the credential store used by the auth and admin handlers
type UserStore interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
}

// TokenIssuer signs bearer tokens for a principal
type TokenIssuer interface {
	Issue(userID uint, role domain.Role) (string, error)
}

// PasswordVerifier checks a plaintext password against a stored hash
type PasswordVerifier interface {
	Verify(plaintext, hash string) bool
}

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=64"`       // Display name
	Email    string `json:"email" binding:"required,email,max=255"`   // Login identifier
	Password string `json:"password" binding:"required,min=8,max=72"` // Plaintext, hashed before storage
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication, shared by register and login
type AuthResponse struct {
	ID       uint        `json:"id"`       // User ID
	Username string      `json:"username"` // Display name
	Email    string      `json:"email"`    // Normalized email
	Role     domain.Role `json:"role"`     // standard or admin
	Token    string      `json:"token"`    // Bearer token
}

// RegisterHandler creates a standard user and returns a token for it
func RegisterHandler(users UserStore, tokens TokenIssuer, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username, a valid email and a password of 8-72 characters are required"})
			return
		}
		user, err := users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			respondError(c, err) // Duplicate email, validation or store failure
			return
		}
		token, err := tokens.Issue(user.ID, user.Role) // Generate JWT token
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.Registrations.Inc()
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,            // New user ID
			"role":    user.Role.String(), // Always standard here
		}).Info("User registered")
		// New user changes every admin listing page
		if err := utils.DeleteCachePrefix(c.Request.Context(), rdb, adminUsersCachePrefix); err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to invalidate user cache")
		}
		c.JSON(http.StatusCreated, newAuthResponse(user, token))
	}
}

// LoginHandler authenticates a user and returns a JWT token. Unknown email
// and wrong password produce the same response and cost the same time.
func LoginHandler(users UserStore, hasher PasswordVerifier, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}
		user, err := users.FindByEmail(c.Request.Context(), req.Email) // Fetch user from database
		if err != nil {
			respondError(c, err)
			return
		}
		hash := "" // Empty hash is verified against a dummy
		if user != nil {
			hash = user.PasswordHash
		}
		// Compare provided password with stored hash
		if !hasher.Verify(req.Password, hash) || user == nil {
			metrics.AuthFailures.WithLabelValues(metrics.ReasonBadPassword).Inc()
			logrus.WithField("client_ip", c.ClientIP()).Warn("Login failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		token, err := tokens.Issue(user.ID, user.Role) // Generate JWT token
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newAuthResponse(user, token)) // Return the profile and token
	}
}

func newAuthResponse(user *domain.User, token string) AuthResponse {
	return AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Token:    token,
	}
}
