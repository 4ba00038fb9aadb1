package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stitchline/backoffice/internal/infrastructure/cache"
	"github.com/stitchline/backoffice/internal/interfaces/http/dto"
)

// IdempotencyHeaderKey carries the client-generated idempotency key
const IdempotencyHeaderKey = "X-Idempotency-Key"

// Idempotency rejects replays of state-changing requests. The client sends a
// fresh X-Idempotency-Key per logical action (the print confirmation flow
// generates one per batch); a replay within the TTL gets 409.
//
// The header is optional: requests without it pass through, since the
// print-path operations are already idempotent or guarded at the repository
// level. Store failures fail open, logged.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeaderKey)
		if key == "" {
			c.Next()
			return
		}

		fresh, err := store.MarkProcessed(c.Request.Context(), key, ttl)
		if err != nil {
			logger.Warn("idempotency store unavailable, allowing request",
				zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !fresh {
			requestID := c.GetString("request_id")
			c.AbortWithStatusJSON(http.StatusConflict,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeDuplicateRequest,
					"This request was already processed", requestID))
			return
		}

		c.Next()
	}
}
