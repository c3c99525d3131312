package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// IdempotencyHeader is the standard HTTP header for idempotency keys
	IdempotencyHeader = "Idempotency-Key"
	// IdempotencyHitHeader marks a response replayed from the store.
	IdempotencyHitHeader = "X-Idempotency-Hit"

	idempotencyPrefix = "idempotency:"
	lockPrefix        = "lock:idempotency:"
)

// releaseLock deletes the in-flight marker only if this request still owns it.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type IdempotencyConfig struct {
	// TTL is how long a successful response is replayed.
	TTL time.Duration
	// LockTimeout bounds how long a crashed request blocks its key.
	LockTimeout time.Duration
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Idempotency replays the stored response of an earlier successful request
// carrying the same Idempotency-Key. Keys are scoped to the authenticated
// user and the route, so two users cannot collide. While a request holds a
// key, concurrent requests with that key get 409. Only 2xx responses are
// stored; failures may be retried with the same key.
func Idempotency(rdb *redis.Client, cfg IdempotencyConfig, logger *zap.Logger) fiber.Handler {
	logger = logger.Named("idempotency")

	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyHeader)
		if key == "" {
			return c.Next()
		}

		scope := fmt.Sprintf("%v:%s:%s:%s", c.Locals(userIDKey), c.Method(), c.Path(), key)
		cacheKey := idempotencyPrefix + scope
		lockKey := lockPrefix + scope
		ctx := c.UserContext()

		cached, err := rdb.Get(ctx, cacheKey).Bytes()
		switch {
		case err == nil:
			var stored storedResponse
			if err := json.Unmarshal(cached, &stored); err == nil {
				logger.Debug("replaying response", zap.String("key", key))
				c.Set(IdempotencyHitHeader, "true")
				c.Set(fiber.HeaderContentType, stored.ContentType)
				return c.Status(stored.Status).Send(stored.Body)
			}
			logger.Warn("discarding unreadable stored response", zap.String("key", key))
		case !errors.Is(err, redis.Nil):
			logger.Error("idempotency lookup failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "idempotency store unavailable"})
		}

		token := uuid.NewString()
		acquired, err := rdb.SetNX(ctx, lockKey, token, cfg.LockTimeout).Result()
		if err != nil {
			logger.Error("idempotency lock failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "idempotency store unavailable"})
		}
		if !acquired {
			logger.Info("concurrent request with same key", zap.String("key", key))
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a request with this idempotency key is currently being processed",
			})
		}

		defer func() {
			// Released even when the request context is done.
			if err := releaseLock.Run(context.Background(), rdb, []string{lockKey}, token).Err(); err != nil {
				logger.Warn("failed to release idempotency lock", zap.Error(err))
			}
		}()

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			return nil
		}

		payload, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		})
		if err != nil {
			logger.Error("failed to encode response", zap.Error(err))
			return nil
		}
		if err := rdb.Set(ctx, cacheKey, payload, cfg.TTL).Err(); err != nil {
			logger.Error("failed to store response", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
}
