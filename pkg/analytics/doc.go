// Package analytics implements the real-time usage analytics engine for
// content items: view counters, unique-visitor sets, read-progress series,
// click histograms, the hot leaderboard, the aggregate snapshot cache, and
// the bounded raw event stream. Everything lives in Redis behind
// storage.Client.
//
// # Architecture
//
// Tracker holds the synchronous write primitives. Each tracking call is one
// transactional pipeline so its effects land in a single round trip:
//
//   - TrackView: view counter INCR, visitor SADD with a 24h window,
//     leaderboard ZINCRBY with a 10m window, and a stream event.
//   - TrackReadProgress: timestamp-scored ZADD, trim to the newest N
//     samples, 5m window, and a stream event.
//   - TrackLinkClick: per-URL HINCRBY, 5m window, and a stream event.
//
// Service is the public surface. Write operations are fire-and-forget:
// they enqueue the Tracker call on a bounded worker pool and return
// immediately; store failures are logged and counted, never surfaced, and a
// full queue drops the write rather than blocking the caller. Read
// operations never return errors either — GetRealTimeStats degrades to a
// zero-valued snapshot and GetHotBlogs to an empty list when the store is
// unreachable, so dashboards render instead of crashing.
//
// # Consistency
//
// GetRealTimeStats is cache-aside with a 60s snapshot TTL (plus an optional
// in-process L1 tier sharing that TTL): a cached snapshot is returned
// verbatim even when writes landed after it was computed. The hot
// leaderboard is one cluster-wide key whose TTL is re-armed on every write;
// when it lapses the whole ranking resets abruptly. Cross-shard atomicity
// of a tracking batch is not guaranteed in a cluster deployment; partial
// application is accepted as eventual-consistency noise.
package analytics
