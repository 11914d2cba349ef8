package middleware

import (
	"context"
	"msgrpc/message"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware rejects requests above the token-bucket rate.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Envelope) *message.Envelope {
			if !limiter.Allow() {
				return &message.Envelope{
					ID:    req.ID,
					Error: "rate limit exceeded",
				}
			}
			return next(ctx, req)
		}
	}
}
