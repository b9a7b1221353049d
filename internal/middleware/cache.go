package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/config"
)

// cachedResponse is what NewRedisCache stores per key.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body into buf, up to limit bytes.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.truncated = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey hashes the parts selected by the key strategy under the prefix.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	default:
		parts = []string{"route", c.Path(), "q", r.URL.Query().Encode()}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewRedisCache serves repeated successful responses from Redis for cfg.TTL.
// A request with "Cache-Control: no-cache" bypasses the lookup and
// refreshes the entry. Without Redis it passes everything through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !cfg.Caches(req.Method) {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if !strings.Contains(req.Header.Get("Cache-Control"), "no-cache") {
				if raw, err := rdb.Get(req.Context(), key).Bytes(); err == nil {
					var hit cachedResponse
					if json.Unmarshal(raw, &hit) == nil {
						c.Response().Header().Set("X-Cache", "HIT")
						return c.Blob(hit.Status, hit.ContentType, hit.Body)
					}
				} else if err != redis.Nil {
					log.Warn().Err(err).Msg("response cache read failed")
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}
			entry, err := json.Marshal(cachedResponse{
				Status:      cw.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        cw.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(req.Context()), key, entry, ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("response cache write failed")
			}
			return nil
		}
	}
}
