package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_SetsOperator(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", time.Hour)
	operatorID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(operatorID, "Aminata", "a@example.com", []string{"cashier"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(AuthMiddleware(jwtManager))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet(UserIDKey).(uuid.UUID).String(), "name": c.GetString(UserNameKey)})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), operatorID.String())
				assert.Contains(t, w.Body.String(), "Aminata")
			}
		})
	}
}

func TestOperatorRateLimiter_LimitsPerOperator(t *testing.T) {
	rl := NewOperatorRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})

	first, second := uuid.New(), uuid.New()
	var current uuid.UUID
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(UserIDKey, current); c.Next() })
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(id uuid.UUID) int {
		current = id
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call(first))
	assert.Equal(t, http.StatusOK, call(first))
	assert.Equal(t, http.StatusTooManyRequests, call(first))
	assert.Equal(t, http.StatusOK, call(second))
}

func TestRateLimiterConfigFor(t *testing.T) {
	cfg := RateLimiterConfigFor(120, 60)
	assert.InDelta(t, 2.0, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 120, cfg.BurstSize)

	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFor(0, 60))
}

func TestRequireRole(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(UserRolesKey, []string{"cashier"}); c.Next() })
	router.GET("/open", RequireRole("cashier", "admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/admin", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
