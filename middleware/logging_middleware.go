package middleware

import (
	"context"
	"log"
	"msgrpc/message"
	"time"
)

func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Envelope) *message.Envelope {
			// Log the incoming request
			start := time.Now()
			resp := next(ctx, req)
			// Print the service method and the time taken to process the request and error if any
			duration := time.Since(start)
			log.Printf("ServiceMethod: %s, ID: %s, Duration: %s", req.ServiceMethod, req.ID, duration)
			if resp.Error != "" {
				log.Printf("Error: %s", resp.Error)
			}
			return resp
		}
	}
}
