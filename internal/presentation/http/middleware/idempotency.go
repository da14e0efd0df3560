package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/repository"
	"github.com/sangkips/creance-pos/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid when the config does not say otherwise
	IdempotencyKeyTTL = 24 * time.Hour

	reservationTTL = time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST is retried with the same
// Idempotency-Key, so a resent sale or payment is never committed twice.
// Requests without the header pass through.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = IdempotencyKeyTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		userID, ok := c.Get(UserIDKey)
		operatorID, isUUID := userID.(uuid.UUID)
		if !ok || !isUUID {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Unable to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		endpoint := c.Request.Method + " " + c.FullPath()
		hash := requestHash(endpoint, body)
		ctx := c.Request.Context()

		existing, err := config.Repo.GetByKey(ctx, key, operatorID)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed, processing request")
			c.Next()
			return
		}
		if existing != nil && !existing.IsExpired() {
			if existing.RequestHash != "" && existing.RequestHash != hash {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		reserved, err := config.Repo.Reserve(ctx, key, operatorID, reservationTTL)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency reservation failed, processing request")
			c.Next()
			return
		}
		if !reserved {
			response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			if err := config.Repo.Release(ctx, key, operatorID); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("idempotency release failed")
			}
			return
		}

		now := time.Now()
		ikey := &entity.IdempotencyKey{
			Key:          key,
			UserID:       operatorID,
			Endpoint:     endpoint,
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			CreatedAt:    now,
			ExpiresAt:    now.Add(ttl),
		}
		if err := config.Repo.Create(ctx, ikey); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency store failed")
		}
	}
}

func requestHash(endpoint string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(endpoint))
	sum.Write([]byte{0})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}
