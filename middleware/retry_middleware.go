package middleware

import (
	"context"
	"log"
	"msgrpc/message"
	"strings"
	"time"
)

func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Envelope) *message.Envelope {
			resp := next(ctx, req)
			for i := 0; i < maxRetries; i++ {
				if resp.Error == "" {
					return resp // Success, return response
				}
				if strings.Contains(resp.Error, "timeout") || strings.Contains(resp.Error, "connection refused") {
					// Log the retry attempt
					log.Printf("Retry attempt %d for %s due to error: %s", i+1, req.ServiceMethod, resp.Error)
					time.Sleep(baseDelay * time.Duration(1<<i)) // Exponential backoff
					resp = next(ctx, req)                       // Retry the request
				} else {
					return resp // Non-retryable error, return immediately
				}
			}
			return resp // Return last response after retries
		}
	}
}
