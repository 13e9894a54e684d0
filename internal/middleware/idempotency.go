package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"trkart/internal/models"
	"trkart/internal/repository"
)

const idempotencyKeyHeader = "Idempotency-Key"

// idempotentPaths defines which paths require idempotency handling
//
// Only mutating operations (POST) need idempotency
var idempotentPaths = []string{
	"/api/v1/transactions",
	"/api/v1/transfers",
}

type responseCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b) // Capture for caching
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a previously seen
// Idempotency-Key instead of re-executing the request. This is what
// lets a client whose request was cancelled mid-flight retry safely:
// if the original committed, the retry gets the committed response
// back rather than a second transaction.
func Idempotency(repo repository.IdempotencyRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requiresIdempotency(c.Request) {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(idempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		requestPath := normalizeRequestPath(c.Request.URL.Path)
		ctx := c.Request.Context()

		cached, err := repo.Get(ctx, idempotencyKey, requestPath)
		if err != nil {
			logger.Error("failed to check idempotency cache", "error", err)
			c.Next()
			return
		}

		if cached != nil {
			logger.Debug("returning cached idempotent response",
				"key", idempotencyKey,
				"path", requestPath,
				"status", cached.ResponseStatus,
			)
			c.Header("X-Idempotent-Replayed", "true")
			c.Data(cached.ResponseStatus, "application/json", []byte(cached.ResponseBody))
			c.Abort()
			return
		}

		capture := &responseCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		if shouldCacheResponse(capture.Status()) {
			idemKey := &models.IdempotencyKey{
				Key:            idempotencyKey,
				RequestPath:    requestPath,
				ResponseStatus: capture.Status(),
				ResponseBody:   capture.body.String(),
				CreatedAt:      time.Now(),
			}

			if err := repo.Store(ctx, idemKey); err != nil {
				logger.Error("failed to store idempotency key",
					"error", err,
					"key", idempotencyKey,
				)
			}
		}
	}
}

func requiresIdempotency(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}

	path := normalizeRequestPath(r.URL.Path)
	for _, p := range idempotentPaths {
		if path == p {
			return true
		}
	}
	return false
}

func normalizeRequestPath(urlPath string) string {
	return strings.TrimSuffix(urlPath, "/")
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
