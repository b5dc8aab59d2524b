// Package storage provides the Redis connection layer for the Pulse
// analytics engine.
//
// # Overview
//
// Every analytics structure (counters, visitor sets, progress series, click
// histograms, the hot leaderboard, the snapshot cache, and the event stream)
// lives in Redis. This package owns the connection to it: a single Client
// built from a Config, shared by all callers without external locking.
//
// # Topology
//
// Config.Addrs decides the topology. One address connects a plain client;
// two or more connect a cluster client with bounded retry backoff
// (MinRetryBackoff..MaxRetryBackoff) and a MaxRedirects cap, after which the
// error surfaces to the caller. With ReadFromReplicas set, read-only
// commands may be served by replica nodes that lag the primary; the engine
// accepts that staleness for analytics data.
//
// # TTL windows
//
// Config.CacheTTL holds the expiry window for each structure kind, keyed by
// the TTL* constants. Callers fetch windows through Config.TTL, which falls
// back to the general window for unknown kinds.
package storage
