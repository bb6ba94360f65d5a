package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"casino-lobby/internal/logger"
	"casino-lobby/internal/services"
)

const (
	DefaultRateLimitBets    = services.DefaultRateLimitBets
	DefaultRateLimitActions = services.DefaultRateLimitActions
)

func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			// Browsers cannot set headers on a WebSocket upgrade.
			tokenString = c.Query("token")
			if tokenString == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				c.Abort()
				return
			}
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("player_id", claims.PlayerID)

		c.Next()
	}
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, playerID, action string, limit int, window time.Duration) (bool, error)
}

type rateRule struct {
	action string
	limit  int
	window time.Duration
}

func ruleFor(path string) (rateRule, bool) {
	switch {
	case strings.HasSuffix(path, "/games/bet"):
		return rateRule{action: "bet", limit: DefaultRateLimitBets, window: time.Minute}, true
	case strings.HasSuffix(path, "/games/settle"),
		strings.HasSuffix(path, "/games/abandon"),
		strings.HasSuffix(path, "/games/crash/cashout"),
		strings.HasSuffix(path, "/games/blackjack/hit"),
		strings.HasSuffix(path, "/games/blackjack/stand"),
		strings.HasSuffix(path, "/wallet/deposit"):
		return rateRule{action: "action", limit: DefaultRateLimitActions, window: time.Minute}, true
	}
	return rateRule{}, false
}

// RateLimitMiddleware must run after AuthMiddleware. A limiter error lets the
// request through so a Redis outage does not stop play.
func RateLimitMiddleware(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetString("player_id")
		if limiter == nil || playerID == "" {
			c.Next()
			return
		}

		rule, ok := ruleFor(c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), playerID, rule.action, rule.limit, rule.window)
		if err != nil {
			logger.Log.Warnw("Rate limit check failed", "player_id", playerID, "action", rule.action, "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": rule.window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
