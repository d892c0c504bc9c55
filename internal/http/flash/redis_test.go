package flash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/router-for-me/WhitelistAdmin/internal/metrics"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1, DialTimeout: time.Second})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Minute, false), server
}

func redisRouter(t *testing.T, store *RedisStore) (*gin.Engine, *[]Message) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	popped := &[]Message{}
	router := gin.New()
	router.POST("/set", func(c *gin.Context) {
		if err := store.Set(c, Message{Key: KeySuccess, Text: "Deleted successfully"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/pop", func(c *gin.Context) {
		if msg, ok := store.Pop(c); ok {
			*popped = append(*popped, msg)
		}
		c.Status(http.StatusNoContent)
	})
	return router, popped
}

func popWith(router *gin.Engine, cookie *http.Cookie) {
	req := httptest.NewRequest(http.MethodGet, "/pop", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRedisStoreRoundTripPopsOnce(t *testing.T) {
	store, server := newRedisStore(t)
	router, popped := redisRouter(t, store)

	setRecorder := httptest.NewRecorder()
	router.ServeHTTP(setRecorder, httptest.NewRequest(http.MethodPost, "/set", nil))
	if setRecorder.Code != http.StatusNoContent {
		t.Fatalf("set failed with %d", setRecorder.Code)
	}
	cookies := setRecorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != idCookieName {
		t.Fatalf("expected one %s cookie, got %v", idCookieName, cookies)
	}
	if !server.Exists(redisKeyPrefix + cookies[0].Value) {
		t.Fatalf("expected message stored under %s", cookies[0].Value)
	}
	if ttl := server.TTL(redisKeyPrefix + cookies[0].Value); ttl != time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	popWith(router, cookies[0])
	popWith(router, cookies[0])

	if len(*popped) != 1 {
		t.Fatalf("expected exactly one pop, got %d", len(*popped))
	}
	if msg := (*popped)[0]; msg.Key != KeySuccess || msg.Text != "Deleted successfully" {
		t.Fatalf("unexpected flash message: %+v", msg)
	}
	if server.Exists(redisKeyPrefix + cookies[0].Value) {
		t.Fatalf("expected message deleted after pop")
	}
}

func TestRedisStoreRejectsForeignID(t *testing.T) {
	store, server := newRedisStore(t)
	router, popped := redisRouter(t, store)

	if err := server.Set(redisKeyPrefix+"not-a-uuid", "eyJrZXkiOiJlcnJvciIsInRleHQiOiJ4In0"); err != nil {
		t.Fatalf("seed key: %v", err)
	}
	popWith(router, &http.Cookie{Name: idCookieName, Value: "not-a-uuid"})

	if len(*popped) != 0 {
		t.Fatalf("expected non-uuid id to be ignored, got %+v", *popped)
	}
	if !server.Exists(redisKeyPrefix + "not-a-uuid") {
		t.Fatalf("expected key left untouched")
	}
}

func TestRedisStoreCountsErrorsWhenDown(t *testing.T) {
	store, server := newRedisStore(t)
	router, popped := redisRouter(t, store)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	server.Close()

	setErrors := metrics.FlashStoreErrors.WithLabelValues("redis", "set")
	popErrors := metrics.FlashStoreErrors.WithLabelValues("redis", "pop")
	setBefore := testutil.ToFloat64(setErrors)
	popBefore := testutil.ToFloat64(popErrors)

	setRecorder := httptest.NewRecorder()
	router.ServeHTTP(setRecorder, httptest.NewRequest(http.MethodPost, "/set", nil))
	if setRecorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected set to fail, got %d", setRecorder.Code)
	}
	popWith(router, &http.Cookie{Name: idCookieName, Value: "6f1c3b1e-8a52-4c1e-9d4f-0d2b8e7a9c11"})

	if len(*popped) != 0 {
		t.Fatalf("expected no message while redis is down")
	}
	if got := testutil.ToFloat64(setErrors) - setBefore; got != 1 {
		t.Fatalf("expected one set error, got %v", got)
	}
	if got := testutil.ToFloat64(popErrors) - popBefore; got != 1 {
		t.Fatalf("expected one pop error, got %v", got)
	}
}
