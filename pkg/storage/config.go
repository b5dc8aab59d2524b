package storage

import "time"

// TTL map keys for the per-structure expiry windows.
const (
	TTLVisitors  = "visitors"  // unique-visitor sets
	TTLStats     = "stats"     // cached aggregate snapshots
	TTLAggregate = "aggregate" // accumulated raw event data
	TTLHot       = "hot"       // hot leaderboard
	TTLGeneral   = "general"   // progress series, click histograms
)

// Config for the Redis backend
type Config struct {
	// Addrs lists the Redis nodes. A single address connects a standalone
	// client; multiple addresses connect a cluster client.
	Addrs    []string
	Password string
	DB       int // ignored in cluster mode

	// Connection pool and retry behavior
	PoolSize        int
	MaxRedirects    int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration

	// ReadFromReplicas routes read-only commands to replica nodes.
	ReadFromReplicas bool

	// Per-structure expiry windows, keyed by the TTL* constants.
	CacheTTL map[string]time.Duration

	// SeriesMaxSamples bounds the read-progress series per item; the
	// oldest-ranked samples are evicted beyond this.
	SeriesMaxSamples int64

	// StreamMaxLen is the approximate cap on the raw event stream.
	StreamMaxLen int64

	// HotThreshold is the leaderboard score above which an item counts as hot.
	HotThreshold float64

	// HotScoreWeight is added to an item's leaderboard score per view.
	HotScoreWeight float64

	// L1CacheSize is the entry capacity of the in-process snapshot cache.
	// Zero disables the L1 tier.
	L1CacheSize int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Addrs:            []string{"localhost:6379"},
		DB:               0,
		PoolSize:         10,
		MaxRedirects:     3,
		MinRetryBackoff:  50 * time.Millisecond,
		MaxRetryBackoff:  2 * time.Second,
		DialTimeout:      10 * time.Second,
		ReadTimeout:      3 * time.Second,
		WriteTimeout:     3 * time.Second,
		ReadFromReplicas: true,
		CacheTTL: map[string]time.Duration{
			TTLVisitors:  24 * time.Hour,
			TTLStats:     60 * time.Second,
			TTLAggregate: 30 * time.Minute,
			TTLHot:       10 * time.Minute,
			TTLGeneral:   5 * time.Minute,
		},
		SeriesMaxSamples: 1000,
		StreamMaxLen:     10000,
		HotThreshold:     100,
		HotScoreWeight:   1,
		L1CacheSize:      1024,
	}
}

// TTL returns the configured expiry for a structure kind, falling back to
// the general window when the kind is not set.
func (c Config) TTL(kind string) time.Duration {
	if d, ok := c.CacheTTL[kind]; ok && d > 0 {
		return d
	}
	return c.CacheTTL[TTLGeneral]
}
