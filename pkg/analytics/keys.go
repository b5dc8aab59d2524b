package analytics

// Redis key layout. Per-item structures are namespaced by metric kind; the
// leaderboard and the event stream are cluster-wide singletons.
const (
	// hotLeaderboardKey is the sorted set mapping item id to cumulative
	// interaction score. The whole key expires at once, resetting the
	// ranking.
	hotLeaderboardKey = "hot:blogs"

	// eventStreamKey is the append-only stream of raw tracking events,
	// trimmed to an approximate maximum length.
	eventStreamKey = "events:stream"
)

// viewsKey holds the per-item view counter (string used as an integer).
func viewsKey(itemID string) string { return "views:" + itemID }

// visitorsKey holds the per-item set of visitor identifiers.
func visitorsKey(itemID string) string { return "visitors:" + itemID }

// progressKey holds the per-item read-progress series (sorted set scored
// by sample timestamp).
func progressKey(itemID string) string { return "progress:" + itemID }

// clicksKey holds the per-item URL click histogram (hash).
func clicksKey(itemID string) string { return "clicks:" + itemID }

// statsKey holds the cached aggregate snapshot (JSON string).
func statsKey(itemID string) string { return "stats:" + itemID }
