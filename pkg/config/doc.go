// Package config loads daemon configuration from PULSE_* environment
// variables with validated defaults: the ops server address, the Redis
// node list and per-structure TTL windows, the dispatch pool sizing, and
// observability settings.
package config
