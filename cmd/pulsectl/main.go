package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openlitera/pulse/pkg/analytics"
	"github.com/openlitera/pulse/pkg/config"
	"github.com/openlitera/pulse/pkg/observability"
	"github.com/openlitera/pulse/pkg/storage"
)

const usage = `pulsectl - query the Pulse analytics engine

Usage:
  pulsectl stats <item-id>    print the aggregate snapshot for an item
  pulsectl hot [limit]        print the hot leaderboard (default limit 10)
  pulsectl clicks <item-id>   print the link click histogram for an item
  pulsectl tail [n]           print the n newest raw events (default 20)

Configuration is read from PULSE_* environment variables
(PULSE_REDIS_ADDRS, PULSE_REDIS_PASSWORD, ...).
`

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	// CLI reads don't need the in-process snapshot tier.
	cfg.Store.L1CacheSize = 0

	store, err := storage.NewClient(cfg.Store, observability.NewLogger(observability.ErrorLevel, os.Stderr))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer store.Close()

	engine := analytics.NewService(store, nil, nil, analytics.Options{})
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "stats":
		if len(os.Args) < 3 {
			log.Fatal("stats requires an item id")
		}
		printJSON(engine.GetRealTimeStats(ctx, os.Args[2]))

	case "hot":
		limit := analytics.DefaultHotLimit
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil {
				limit = n
			}
		}
		printJSON(engine.GetHotBlogs(ctx, limit))

	case "clicks":
		if len(os.Args) < 3 {
			log.Fatal("clicks requires an item id")
		}
		printJSON(engine.GetLinkClicks(ctx, os.Args[2]))

	case "tail":
		var n int64 = 20
		if len(os.Args) > 2 {
			if v, err := strconv.ParseInt(os.Args[2], 10, 64); err == nil {
				n = v
			}
		}
		printJSON(engine.GetRecentEvents(ctx, n))

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
