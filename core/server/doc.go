// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application; this package defines the
// settings it reads: listen port, API key, JWT secret for operator tokens,
// per-client rate limits, the batch timeout and how long reconciliation
// sessions are kept for review.
package server
