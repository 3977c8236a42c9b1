package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-reservation/internal/config"
	"github.com/iliyamo/tour-reservation/internal/logging"
	"github.com/iliyamo/tour-reservation/internal/utils"
)

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, id)
	}, JWTAuth("s3cret"))

	token, err := utils.NewAccessToken("s3cret", 7, time.Now(), time.Minute)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken("s3cret", 7, time.Now().Add(-time.Hour), time.Minute)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other", 7, time.Now(), time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token.Token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token.Token, http.StatusUnauthorized},
		{"expired", "Bearer " + expired.Token, http.StatusUnauthorized},
		{"other secret", "Bearer " + foreign.Token, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := serve(e, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "7\n", rec.Body.String())
			}
		})
	}
}

func TestUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, found := UserID(c)
	assert.False(t, found)
	assert.Equal(t, "anon", identity(c))

	c.Set(UserIDKey, "12")
	id, found := UserID(c)
	assert.True(t, found)
	assert.Equal(t, uint64(12), id)

	c.Set(UserIDKey, uint64(5))
	assert.Equal(t, "5", identity(c))

	c.Set(UserIDKey, "abc")
	_, found = UserID(c)
	assert.False(t, found)
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/wallet/transfer", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/wallet/transfer")
	c.Set(UserIDKey, uint64(9))

	cases := map[string]string{
		"ip":            "rl:ip:10.0.0.1",
		"user":          "rl:user:9",
		"route":         "rl:route:POST /v1/wallet/transfer",
		"ip_user":       "rl:ip:10.0.0.1:user:9",
		"user_route":    "rl:user:9:route:POST /v1/wallet/transfer",
		"ip_user_route": "rl:ip:10.0.0.1:user:9:route:POST /v1/wallet/transfer",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, rateKey(cfg, c), strategy)
	}
}

// unreachable returns a client whose every command fails fast.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	e.POST("/pay", ok, NewTokenBucket(cfg, unreachable(t), logging.Discard()))

	for i := 0; i < 3; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodPost, "/pay", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTokenBucket_DisabledIsPassThrough(t *testing.T) {
	e := echo.New()
	e.POST("/pay", ok, NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, logging.Discard()))
	rec := serve(e, httptest.NewRequest(http.MethodPost, "/pay", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRedisCache_FailsOpen(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Second, Prefix: "cache", MaxBodyBytes: 1024}
	e.GET("/v1/events/:id", ok, NewRedisCache(cfg, unreachable(t), logging.Discard()))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/v1/events/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	ctx := func(target string) echo.Context {
		return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	}
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "path_query"}
	assert.NotEqual(t, cacheKey(cfg, ctx("/v1/events/1?a=1")), cacheKey(cfg, ctx("/v1/events/1?a=2")))

	cfg.KeyStrategy = "path"
	assert.Equal(t, cacheKey(cfg, ctx("/v1/events/1?a=1")), cacheKey(cfg, ctx("/v1/events/1?a=2")))
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, cacheKey(cfg, ctx("/v1/events/1")))
}

func TestBodyRecorder_StopsAtLimit(t *testing.T) {
	rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 4}
	_, _ = rec.Write([]byte("abc"))
	_, _ = rec.Write([]byte("def"))
	assert.True(t, rec.truncated)
	assert.Equal(t, "abc", rec.buf.String())
}
