// Package middleware provides HTTP middleware for the ops server: request
// id propagation, structured access logging, and a Redis-backed rate
// limiter shared across daemon instances.
package middleware
