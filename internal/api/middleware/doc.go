// Package middleware provides HTTP middleware for the panel API.
//
// Middleware:
//   - CORS: cross-origin access for the panel front end
//   - RateLimit: per-IP token bucket for the whole API
//   - GlobalRateLimit: shared token bucket for launch and refresh routes
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	router.POST("/containers/:name/launch",
//	    middleware.GlobalRateLimit(middleware.LaunchRateLimitConfig()), h.Launch)
package middleware
