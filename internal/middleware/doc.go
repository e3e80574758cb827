// Package middleware provides HTTP middleware for the preview server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics
//   - Configurable filtering for static assets and health checks
package middleware
