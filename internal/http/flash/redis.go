package flash

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/router-for-me/WhitelistAdmin/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const (
	// idCookieName points at the Redis key holding the message.
	idCookieName   = "flash_id"
	redisKeyPrefix = "whitelist:flash:"
)

// RedisStore keeps flash messages in Redis; the browser only holds a random id.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewRedisStore constructs a RedisStore around an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration, secure bool) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, secure: secure}
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Set writes msg under a fresh id and hands the id to the browser.
func (s *RedisStore) Set(c *gin.Context, msg Message) error {
	value, errEncode := encodeMessage(msg)
	if errEncode != nil {
		return errEncode
	}
	id := uuid.NewString()
	if errSet := s.client.Set(c.Request.Context(), redisKeyPrefix+id, value, s.ttl).Err(); errSet != nil {
		metrics.FlashStoreErrors.WithLabelValues("redis", "set").Inc()
		return errSet
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(idCookieName, id, int(s.ttl/time.Second), "/", "", s.secure, true)
	return nil
}

// Pop fetches and deletes the message referenced by the request cookie.
func (s *RedisStore) Pop(c *gin.Context) (Message, bool) {
	id, errCookie := c.Cookie(idCookieName)
	if errCookie != nil || id == "" {
		return Message{}, false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(idCookieName, "", -1, "/", "", s.secure, true)
	if _, errParse := uuid.Parse(id); errParse != nil {
		return Message{}, false
	}

	value, errGet := s.client.GetDel(c.Request.Context(), redisKeyPrefix+id).Result()
	if errGet != nil {
		if !errors.Is(errGet, redis.Nil) {
			metrics.FlashStoreErrors.WithLabelValues("redis", "pop").Inc()
			log.WithError(errGet).Warn("flash: redis pop failed")
		}
		return Message{}, false
	}
	return decodeMessage(value)
}
