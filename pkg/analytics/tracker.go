package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/openlitera/pulse/pkg/storage"
)

// Tracker holds the synchronous tracking primitives. Each call executes as
// one transactional pipeline; callers wanting the fire-and-forget contract
// go through Service instead.
type Tracker struct {
	store *storage.Client
	cfg   storage.Config
}

// NewTracker creates a tracker on the given store.
func NewTracker(store *storage.Client) *Tracker {
	return &Tracker{store: store, cfg: store.Config()}
}

// TrackView records a view: increments the item's view counter, adds the
// visitor to the dedup set (idempotent per visitor), bumps the hot
// leaderboard score, re-arms both windows, and appends a stream event.
func (t *Tracker) TrackView(ctx context.Context, itemID, visitorID string) error {
	if itemID == "" {
		return fmt.Errorf("empty item id")
	}
	return t.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, viewsKey(itemID))
		pipe.SAdd(ctx, visitorsKey(itemID), visitorID)
		pipe.Expire(ctx, visitorsKey(itemID), t.cfg.TTL(storage.TTLVisitors))
		pipe.ZIncrBy(ctx, hotLeaderboardKey, t.cfg.HotScoreWeight, itemID)
		pipe.Expire(ctx, hotLeaderboardKey, t.cfg.TTL(storage.TTLHot))
		t.appendEvent(ctx, pipe, itemID, EventTypeView, map[string]interface{}{
			"visitorId": visitorID,
		})
		return nil
	})
}

// TrackReadProgress appends a progress sample to the item's series, trims
// the series to the newest SeriesMaxSamples entries, and re-arms the
// window. Progress is stored as given; range validation is the caller's
// responsibility.
func (t *Tracker) TrackReadProgress(ctx context.Context, itemID string, progress float64) error {
	if itemID == "" {
		return fmt.Errorf("empty item id")
	}
	key := progressKey(itemID)
	now := time.Now()
	member := strconv.FormatInt(now.UnixMicro(), 10) + ":" +
		strconv.FormatFloat(progress, 'f', -1, 64)

	return t.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now.UnixMicro()), Member: member})
		// Keep only the newest-ranked samples.
		pipe.ZRemRangeByRank(ctx, key, 0, -(t.cfg.SeriesMaxSamples + 1))
		pipe.Expire(ctx, key, t.cfg.TTL(storage.TTLGeneral))
		t.appendEvent(ctx, pipe, itemID, EventTypeProgress, map[string]interface{}{
			"progress": progress,
		})
		return nil
	})
}

// TrackLinkClick increments the click count for url in the item's
// histogram and re-arms the window.
func (t *Tracker) TrackLinkClick(ctx context.Context, itemID, url string) error {
	if itemID == "" {
		return fmt.Errorf("empty item id")
	}
	return t.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, clicksKey(itemID), url, 1)
		pipe.Expire(ctx, clicksKey(itemID), t.cfg.TTL(storage.TTLGeneral))
		t.appendEvent(ctx, pipe, itemID, EventTypeLink, map[string]interface{}{
			"url": url,
		})
		return nil
	})
}

// AppendEvent appends a caller-supplied event to the raw stream. The type
// must be one of the EventType* constants.
func (t *Tracker) AppendEvent(ctx context.Context, event StreamEvent) error {
	if event.ItemID == "" {
		return fmt.Errorf("empty item id")
	}
	if err := validateEventType(event.Type); err != nil {
		return err
	}
	return t.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		t.appendEvent(ctx, pipe, event.ItemID, event.Type, event.Data)
		return nil
	})
}

// appendEvent queues an XADD with approximate trimming onto pipe. The data
// payload is carried as a JSON string field.
func (t *Tracker) appendEvent(ctx context.Context, pipe redis.Pipeliner, itemID, eventType string, data map[string]interface{}) {
	payload := "{}"
	if len(data) > 0 {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: eventStreamKey,
		MaxLen: t.cfg.StreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"itemId": itemID,
			"type":   eventType,
			"data":   payload,
		},
	})
	pipe.Expire(ctx, eventStreamKey, t.cfg.TTL(storage.TTLAggregate))
}
