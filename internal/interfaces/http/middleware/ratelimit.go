package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/dto"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// NewLimiter builds a limiter for a formatted rate such as "300-M". With a
// redis client the counters are shared by every server instance, otherwise
// they live in process memory.
func NewLimiter(formatted, prefix string, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	opts := limiter.StoreOptions{Prefix: prefix, MaxRetry: 3}
	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, opts)
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(opts)
	}
	return limiter.New(store, rate), nil
}

// KeyFunc picks the bucket of a request
type KeyFunc func(c *gin.Context) string

// ByClientIP buckets requests per client address
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit rejects requests over the limiter's rate with 429. Store errors
// let the request through.
func RateLimit(l *limiter.Limiter, keyFunc KeyFunc, logger *zap.Logger) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ByClientIP
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx, err := l.Get(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			wait := ctx.Reset - time.Now().Unix()
			if wait < 1 {
				wait = 1
			}
			c.Header("Retry-After", strconv.FormatInt(wait, 10))
			abort(c, dto.ErrCodeRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

// PostOnly applies mw to POST requests and skips every other method, so a
// login limiter does not count page loads
func PostOnly(mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		mw(c)
	}
}
