// Package httpkit holds the gin middleware and error replies shared by
// every route.
package httpkit

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"enova_backend/platform/apperr"
	"enova_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

const (
	// ContextRequestIDKey is the gin context key for the request ID.
	ContextRequestIDKey = "requestID"
	// RequestIDHeader carries the request ID in and out.
	RequestIDHeader = "X-Request-ID"
	// FunctionKeyHeader carries the function key on protected routes.
	FunctionKeyHeader = "x-functions-key"
	// FunctionKeyQuery is the query parameter alternative to FunctionKeyHeader.
	FunctionKeyQuery = "code"

	errMissingKey = "missing function key"
	errInvalidKey = "invalid function key"
)

// RequestID assigns every request an ID, reusing a caller-supplied one,
// and stores it on both the gin and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey, id))

		c.Next()
	}
}

// RequestLogger logs every request once it has been served. The route
// template is logged when gin matched one, so ids in paths do not explode
// log cardinality.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		log.WithContext(c.Request.Context()).HTTPRequest(
			c.Request.Method, path, c.Writer.Status(),
			float64(time.Since(start).Milliseconds()), c.ClientIP(),
		)
	}
}

// SecurityHeaders sets headers suited to a JSON-only API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Cache-Control", "no-store")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

// limiterIdleTTL is how long a client's limiter survives without requests.
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter keeps one token bucket per client IP. Buckets of clients
// that stay quiet for limiterIdleTTL are dropped.
type IPRateLimiter struct {
	limiters *ttlcache.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter allows r requests per second per IP with the given burst.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](limiterIdleTTL))
	go limiters.Start()
	return &IPRateLimiter{limiters: limiters, rate: r, burst: burst, log: log}
}

// Stop ends the expiry loop.
func (i *IPRateLimiter) Stop() {
	i.limiters.Stop()
}

func (i *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	item, _ := i.limiters.GetOrSet(ip, rate.NewLimiter(i.rate, i.burst))
	return item.Value()
}

// RateLimit rejects requests over the client's budget with 429.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !i.limiterFor(ip).Allow() {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// FunctionKeyRequired rejects requests that do not present key in the
// x-functions-key header or the code query parameter. An empty key
// disables the check.
func FunctionKeyRequired(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(FunctionKeyHeader)
		if presented == "" {
			presented = c.Query(FunctionKeyQuery)
		}
		if presented == "" {
			abortUnauthorized(c, errMissingKey)
			return
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			abortUnauthorized(c, errInvalidKey)
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	HandleError(c, apperr.Unauthorized(message))
	c.Abort()
}
