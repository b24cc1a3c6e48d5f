// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - rayid: assigns every request a RayID, injected into the context and
//     response headers for tracing.
//   - auth: accepts an API key or a CRM-issued JWT and records the operator.
//   - ratelimit: per-client token bucket backed by golang.org/x/time/rate.
//
// These are registered globally in the start command.
package middleware
