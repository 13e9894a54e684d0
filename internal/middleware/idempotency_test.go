package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trkart/internal/models"
)

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*models.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: make(map[string]*models.IdempotencyKey)}
}

func (r *memoryIdempotencyRepo) Get(_ context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[key+"|"+requestPath], nil
}

func (r *memoryIdempotencyRepo) Store(_ context.Context, idemKey *models.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := idemKey.Key + "|" + idemKey.RequestPath
	if _, exists := r.keys[k]; !exists {
		r.keys[k] = idemKey
	}
	return nil
}

func testRouter(repo *memoryIdempotencyRepo, handlerCalls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(Idempotency(repo, logger))
	router.POST("/api/v1/transactions", func(c *gin.Context) {
		*handlerCalls++
		c.JSON(http.StatusCreated, gin.H{"success": true, "call": *handlerCalls})
	})
	router.POST("/api/v1/other", func(c *gin.Context) {
		*handlerCalls++
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func post(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0
	router := testRouter(repo, &calls)

	first := post(router, "/api/v1/transactions", "key-1")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, first.Header().Get("X-Idempotent-Replayed"))

	second := post(router, "/api/v1/transactions", "key-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 1, calls, "handler must not run again")
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyDistinctKeysExecuteIndependently(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0
	router := testRouter(repo, &calls)

	post(router, "/api/v1/transactions", "key-1")
	post(router, "/api/v1/transactions", "key-2")

	assert.Equal(t, 2, calls)
}

func TestIdempotencyMissingKeyPassesThrough(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0
	router := testRouter(repo, &calls)

	post(router, "/api/v1/transactions", "")
	post(router, "/api/v1/transactions", "")

	assert.Equal(t, 2, calls)
}

func TestIdempotencyIgnoresUncoveredPaths(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0
	router := testRouter(repo, &calls)

	post(router, "/api/v1/other", "key-1")
	post(router, "/api/v1/other", "key-1")

	assert.Equal(t, 2, calls, "paths outside the idempotent set are never cached")
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	calls := 0
	router := gin.New()
	router.Use(Idempotency(repo, logger))
	router.POST("/api/v1/transactions", func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})

	first := post(router, "/api/v1/transactions", "key-1")
	assert.Equal(t, http.StatusBadRequest, first.Code)

	// The failure was not stored, so the retry really executes and can
	// succeed.
	second := post(router, "/api/v1/transactions", "key-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 2, calls)
}
