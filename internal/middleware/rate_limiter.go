package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/symptom-triage-server/internal/domain"
)

// RateLimiterConfig sets the per-client token bucket.
type RateLimiterConfig struct {
	Rate       rate.Limit
	Burst      int
	MaxClients int // distinct clients tracked at once
}

// RateLimiter keeps one token bucket per client IP. The least recently seen
// clients are forgotten once MaxClients is reached.
type RateLimiter struct {
	config   RateLimiterConfig
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

func NewRateLimiter(config RateLimiterConfig) (*RateLimiter, error) {
	if config.MaxClients <= 0 {
		config.MaxClients = 10000
	}
	cache, err := lru.New[string, *rate.Limiter](config.MaxClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{config: config, limiters: cache}, nil
}

// Allow reports whether client may make a request now.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters.Get(client)
	if !ok {
		limiter = rate.NewLimiter(rl.config.Rate, rl.config.Burst)
		rl.limiters.Add(client, limiter)
	}
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewAPIError(
				domain.ErrCodeRateLimit,
				"rate limit exceeded",
				"",
				RequestID(c),
			))
			return
		}
		c.Next()
	}
}
