package analytics

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/openlitera/pulse/pkg/async"
	"github.com/openlitera/pulse/pkg/observability"
	"github.com/openlitera/pulse/pkg/storage"
)

// DefaultHotLimit is the leaderboard size returned when the caller does
// not ask for a specific limit.
const DefaultHotLimit = 10

// Options tunes the fire-and-forget dispatch pool.
type Options struct {
	Workers         int
	QueueSize       int
	DispatchTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.DispatchTimeout <= 0 {
		o.DispatchTimeout = 10 * time.Second
	}
	return o
}

// Service is the public analytics surface. Write operations never block
// and never surface errors; read operations degrade to zero values
// instead of erroring.
type Service struct {
	store   *storage.Client
	tracker *Tracker
	cfg     storage.Config
	logger  *observability.Logger
	metrics *observability.Metrics
	pool    *async.WorkerPool
	l1      *expirable.LRU[string, StatsSnapshot]
	tracer  trace.Tracer
}

// NewService builds the engine on an established store connection. A nil
// logger or metrics gets a private default.
func NewService(store *storage.Client, logger *observability.Logger, metrics *observability.Metrics, opts Options) *Service {
	opts = opts.withDefaults()
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	cfg := store.Config()

	var l1 *expirable.LRU[string, StatsSnapshot]
	if cfg.L1CacheSize > 0 {
		// The L1 tier shares the snapshot TTL so both tiers go stale
		// together.
		l1 = expirable.NewLRU[string, StatsSnapshot](cfg.L1CacheSize, nil, cfg.TTL(storage.TTLStats))
	}

	return &Service{
		store:   store,
		tracker: NewTracker(store),
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		pool:    async.NewWorkerPool(context.Background(), opts.Workers, opts.QueueSize, "tracking", opts.DispatchTimeout),
		l1:      l1,
		tracer:  otel.Tracer("pulse/analytics"),
	}
}

// Close drains the dispatch pool.
func (s *Service) Close() error {
	return s.pool.Shutdown(5 * time.Second)
}

// TrackView records a view for itemID by visitorID. Fire-and-forget: the
// caller's context is used only for trace parenting, never awaited.
func (s *Service) TrackView(ctx context.Context, itemID, visitorID string) {
	s.dispatch(ctx, "view", itemID, func(ctx context.Context) error {
		return s.tracker.TrackView(ctx, itemID, visitorID)
	})
}

// TrackReadProgress records a progress sample for itemID. Fire-and-forget.
func (s *Service) TrackReadProgress(ctx context.Context, itemID string, progress float64) {
	s.dispatch(ctx, "progress", itemID, func(ctx context.Context) error {
		return s.tracker.TrackReadProgress(ctx, itemID, progress)
	})
}

// TrackLinkClick records a click on url within itemID. Fire-and-forget.
func (s *Service) TrackLinkClick(ctx context.Context, itemID, url string) {
	s.dispatch(ctx, "link", itemID, func(ctx context.Context) error {
		return s.tracker.TrackLinkClick(ctx, itemID, url)
	})
}

// StreamEvent appends a caller-supplied event to the raw stream.
// Fire-and-forget, at-most-once.
func (s *Service) StreamEvent(ctx context.Context, event StreamEvent) {
	s.dispatch(ctx, "stream", event.ItemID, func(ctx context.Context) error {
		return s.tracker.AppendEvent(ctx, event)
	})
}

// dispatch enqueues a tracking write. The write is dropped, not waited on,
// when the queue is full; store failures are logged and counted inside the
// task.
func (s *Service) dispatch(ctx context.Context, op, itemID string, fn func(context.Context) error) {
	if itemID == "" {
		s.logger.WithField("op", op).Warn("dropping tracking write with empty item id")
		return
	}
	s.metrics.TrackingOpsTotal.WithLabelValues(op).Inc()

	parent := trace.SpanContextFromContext(ctx)
	task := func(ctx context.Context) error {
		if parent.IsValid() {
			ctx = trace.ContextWithRemoteSpanContext(ctx, parent)
		}
		ctx, span := s.tracer.Start(ctx, "analytics.track."+op,
			trace.WithAttributes(attribute.String("item.id", itemID)))
		defer span.End()

		if err := fn(ctx); err != nil {
			s.metrics.TrackingFailuresTotal.WithLabelValues(op).Inc()
			s.logger.WithFields(map[string]interface{}{
				"op":      op,
				"item_id": itemID,
			}).WithError(err).Error("tracking write failed")
		}
		return nil
	}

	if !s.pool.TrySubmit(task) {
		s.metrics.TrackingDroppedTotal.Inc()
		s.logger.WithFields(map[string]interface{}{
			"op":      op,
			"item_id": itemID,
		}).Warn("tracking queue full, dropping write")
	}
}

// GetRealTimeStats returns the aggregate snapshot for itemID, cache-aside:
// a cached snapshot inside its TTL is returned verbatim even when writes
// landed after it was computed. On a miss the snapshot is recomputed from
// the live structures and written back. Never returns an error; a store
// failure yields the zero snapshot.
func (s *Service) GetRealTimeStats(ctx context.Context, itemID string) StatsSnapshot {
	ctx, span := s.tracer.Start(ctx, "analytics.GetRealTimeStats",
		trace.WithAttributes(attribute.String("item.id", itemID)))
	defer span.End()

	if s.l1 != nil {
		if snap, ok := s.l1.Get(itemID); ok {
			s.metrics.SnapshotCacheHitsTotal.WithLabelValues("l1").Inc()
			return snap
		}
	}

	rdb := s.store.Redis()
	cached, err := rdb.Get(ctx, statsKey(itemID)).Result()
	if err == nil {
		var snap StatsSnapshot
		if jerr := json.Unmarshal([]byte(cached), &snap); jerr == nil {
			s.metrics.SnapshotCacheHitsTotal.WithLabelValues("redis").Inc()
			if s.l1 != nil {
				s.l1.Add(itemID, snap)
			}
			return snap
		}
		// Corrupt snapshot: drop it and recompute.
		rdb.Del(ctx, statsKey(itemID))
	}

	s.metrics.SnapshotCacheMissesTotal.Inc()
	start := time.Now()
	snap, err := s.recompute(ctx, itemID)
	s.metrics.SnapshotRecomputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.WithField("item_id", itemID).WithError(err).
			Error("stats recompute failed, returning zero snapshot")
		return StatsSnapshot{}
	}

	if data, merr := json.Marshal(snap); merr == nil {
		if serr := rdb.Set(ctx, statsKey(itemID), data, s.cfg.TTL(storage.TTLStats)).Err(); serr != nil {
			s.logger.WithField("item_id", itemID).WithError(serr).
				Warn("failed to cache snapshot")
		}
	}
	if s.l1 != nil {
		s.l1.Add(itemID, snap)
	}
	return snap
}

// recompute reads the four live structures concurrently and assembles a
// fresh snapshot.
func (s *Service) recompute(ctx context.Context, itemID string) (StatsSnapshot, error) {
	rdb := s.store.Redis()
	var snap StatsSnapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := rdb.Get(gctx, viewsKey(itemID)).Int64()
		if err == redis.Nil {
			return nil // absent counter reads as zero
		}
		if err != nil {
			return err
		}
		snap.Views = v
		return nil
	})
	g.Go(func() error {
		n, err := rdb.SCard(gctx, visitorsKey(itemID)).Result()
		if err != nil {
			return err
		}
		snap.UniqueViews = n
		return nil
	})
	g.Go(func() error {
		members, err := rdb.ZRange(gctx, progressKey(itemID), 0, -1).Result()
		if err != nil {
			return err
		}
		snap.ReadProgress = meanProgress(members)
		return nil
	})
	g.Go(func() error {
		score, err := rdb.ZScore(gctx, hotLeaderboardKey, itemID).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		snap.IsHot = score > s.cfg.HotThreshold
		return nil
	})

	if err := g.Wait(); err != nil {
		return StatsSnapshot{}, err
	}
	return snap, nil
}

// meanProgress averages series members of the form "<usec>:<progress>".
func meanProgress(members []string) float64 {
	var sum float64
	var n int
	for _, m := range members {
		idx := strings.IndexByte(m, ':')
		if idx < 0 {
			continue
		}
		v, err := strconv.ParseFloat(m[idx+1:], 64)
		if err != nil {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// GetHotBlogs returns up to limit item ids ordered by descending
// leaderboard score. Items with equal scores come back in descending
// lexicographic id order (the sorted set's total order under reverse
// range). Never returns an error; a store failure yields an empty list.
func (s *Service) GetHotBlogs(ctx context.Context, limit int) []string {
	ctx, span := s.tracer.Start(ctx, "analytics.GetHotBlogs")
	defer span.End()

	if limit <= 0 {
		limit = DefaultHotLimit
	}
	ids, err := s.store.Redis().ZRevRange(ctx, hotLeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		s.logger.WithError(err).Error("hot leaderboard read failed, returning empty list")
		return []string{}
	}
	return ids
}

// GetLinkClicks returns the item's URL click histogram for the current
// window. Empty map on failure.
func (s *Service) GetLinkClicks(ctx context.Context, itemID string) map[string]int64 {
	res, err := s.store.Redis().HGetAll(ctx, clicksKey(itemID)).Result()
	if err != nil {
		s.logger.WithField("item_id", itemID).WithError(err).
			Error("click histogram read failed")
		return map[string]int64{}
	}
	out := make(map[string]int64, len(res))
	for url, raw := range res {
		n, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			continue
		}
		out[url] = n
	}
	return out
}

// GetRecentEvents returns up to count of the newest raw stream events,
// newest first. Nil on failure.
func (s *Service) GetRecentEvents(ctx context.Context, count int64) []StreamEvent {
	if count <= 0 {
		count = 100
	}
	msgs, err := s.store.Redis().XRevRangeN(ctx, eventStreamKey, "+", "-", count).Result()
	if err != nil {
		s.logger.WithError(err).Error("event stream read failed")
		return nil
	}
	events := make([]StreamEvent, 0, len(msgs))
	for _, m := range msgs {
		ev := StreamEvent{ID: m.ID}
		if v, ok := m.Values["itemId"].(string); ok {
			ev.ItemID = v
		}
		if v, ok := m.Values["type"].(string); ok {
			ev.Type = v
		}
		if v, ok := m.Values["data"].(string); ok && v != "" && v != "{}" {
			_ = json.Unmarshal([]byte(v), &ev.Data)
		}
		events = append(events, ev)
	}
	return events
}

// LeaderboardSize returns the number of ranked items, zero on failure.
func (s *Service) LeaderboardSize(ctx context.Context) int64 {
	n, err := s.store.Redis().ZCard(ctx, hotLeaderboardKey).Result()
	if err != nil {
		return 0
	}
	return n
}

// StreamLength returns the current event stream length, zero on failure.
func (s *Service) StreamLength(ctx context.Context) int64 {
	n, err := s.store.Redis().XLen(ctx, eventStreamKey).Result()
	if err != nil {
		return 0
	}
	return n
}

// WarmSnapshots precomputes snapshots for ids with bounded concurrency.
// Used by the daemon's periodic warmup job.
func (s *Service) WarmSnapshots(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	async.Batch(ctx, ids, 4, "snapshot warmup", 10*time.Second,
		func(ctx context.Context, id string) error {
			s.GetRealTimeStats(ctx, id)
			return nil
		})
}
