package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"trade_journal/internal/domain" // Importing domain models
	"trade_journal/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// adminUsersCachePrefix prefixes every cached admin user listing page
const adminUsersCachePrefix = "admin:users:"

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID        uint        `json:"id"`         // User ID
	Username  string      `json:"username"`   // Username
	Email     string      `json:"email"`      // Email
	Role      domain.Role `json:"role"`       // User role
	CreatedAt time.Time   `json:"created_at"` // Registration time
}

// UserListResponse is one page of users
type UserListResponse struct {
	Users      []UserAdminResponse `json:"users"`       // List of users
	Page       int                 `json:"page"`        // Current page
	PageSize   int                 `json:"page_size"`   // Page size
	Total      int64               `json:"total"`       // Total number of users
	TotalPages int                 `json:"total_pages"` // Total pages
	Cached     bool                `json:"cached"`      // Served from cache
}

// parsePagination reads page and page_size with the given defaults and limits
func parsePagination(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// ListUsersHandler returns a page of users. Mounted behind AdminOnlyMiddleware.
func ListUsersHandler(users UserStore, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := parsePagination(c)
		// Create a cache key based on pagination parameters
		cacheKey := adminUsersCachePrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)

		var cached UserListResponse
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			cached.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}

		list, total, err := users.List(ctx, page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := UserListResponse{
			Users:      make([]UserAdminResponse, len(list)),
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
		}
		// Map users to response format; hashes never leave the store
		for i, u := range list {
			resp.Users[i] = UserAdminResponse{
				ID:        u.ID,
				Username:  u.Username,
				Email:     u.Email,
				Role:      u.Role,
				CreatedAt: u.CreatedAt,
			}
		}
		// Cache the response for future requests
		if err := utils.SetCache(ctx, rdb, cacheKey, resp, ttl); err != nil {
			logrus.WithField("error", err.Error()).Warn("User cache write failed")
		}
		c.JSON(http.StatusOK, resp)
	}
}
