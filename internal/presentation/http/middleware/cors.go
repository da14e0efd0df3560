package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/creance-pos/internal/config"
)

var requiredHeaders = []string{"Authorization", "Content-Type", "X-Request-ID", IdempotencyKeyHeader}

// CORSMiddleware creates a CORS middleware for the till front end
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     withRequired(cfg.AllowedHeaders),
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Idempotency-Replayed", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}

	return cors.New(corsConfig)
}

func withRequired(headers []string) []string {
	out := append([]string{"Accept", "Origin"}, headers...)
	for _, want := range requiredHeaders {
		found := false
		for _, h := range out {
			if h == want {
				found = true
				break
			}
		}
		if !found {
			out = append(out, want)
		}
	}
	return out
}
