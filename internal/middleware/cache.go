package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/service"
)

const cacheStateHeader = "X-Cache"

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache serves repeated GET requests from Redis. Cache failures fall
// through to the handler so the route keeps working without Redis.
func ResponseCache(cache *service.CacheService, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || !cache.Enabled() {
			c.Next()
			return
		}

		key := responseCacheKey(c)
		var cached cachedResponse
		if hit, err := cache.Get(c.Request.Context(), key, &cached); err == nil && hit {
			c.Header(cacheStateHeader, "HIT")
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		c.Header(cacheStateHeader, "MISS")
		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		entry := cachedResponse{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.buf.Bytes(),
		}
		if err := cache.Set(c.Request.Context(), key, entry, ttl); err != nil {
			logger.Debug("response cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func responseCacheKey(c *gin.Context) string {
	key := "responses:" + c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		key += "?" + raw
	}
	return key
}
