package middleware

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/giftwell/backend/repository"
)

// RateLimit fronts mutation endpoints with a per-caller token budget. The
// counter lives behind repository.RateLimiter, so a multi-instance deployment
// shares one budget per caller. The limiter fails open: a broken counter
// should degrade to unlimited requests, not to an outage.
func RateLimit(limiter repository.RateLimiter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if limiter == nil {
				next(ctx)
				return
			}

			key := string(ctx.Request.Header.Peek(IdentityHeader))
			if key == "" && ctx.RemoteAddr() != nil {
				key = ctx.RemoteIP().String()
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			allowed, err := limiter.Allow(stdCtx, key)
			cancel()
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next(ctx)
				return
			}
			if !allowed {
				ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
				return
			}
			next(ctx)
		}
	}
}
