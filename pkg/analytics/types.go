package analytics

import "fmt"

// StatsSnapshot is the cached aggregate view of one item's recent
// analytics. It is derived data: always reconstructable from the live
// structures, and possibly stale by up to the stats-cache TTL.
type StatsSnapshot struct {
	Views        int64   `json:"views"`
	UniqueViews  int64   `json:"uniqueViews"`
	ReadProgress float64 `json:"readProgress"`
	IsHot        bool    `json:"isHot"`
}

// Event types accepted on the raw tracking stream.
const (
	EventTypeView     = "view"
	EventTypeRead     = "read"
	EventTypeProgress = "progress"
	EventTypeLink     = "link"
)

// StreamEvent is one entry of the bounded raw event log. ID is assigned by
// the store on append and increases monotonically.
type StreamEvent struct {
	ID     string                 `json:"id,omitempty"`
	ItemID string                 `json:"itemId"`
	Type   string                 `json:"type"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

func validateEventType(t string) error {
	switch t {
	case EventTypeView, EventTypeRead, EventTypeProgress, EventTypeLink:
		return nil
	}
	return fmt.Errorf("unknown event type %q", t)
}
