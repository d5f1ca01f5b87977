package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

const hotListRedisKey = "aggregator:hotlist"

// HotListMirror best-effort-replicates the hot asset list into Redis so
// read replicas (a public API gateway, a caching CDN edge) can serve
// /assets?sort=hot without hitting the in-process State directly.
// Failures are logged and never block ingestion.
type HotListMirror struct {
	client *goredis.Client
	log    *logrus.Entry
}

// NewHotListMirror connects to addr and pings it once up front, matching
// how the teacher's own Redis writer validates connectivity at startup.
func NewHotListMirror(addr string) (*HotListMirror, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &HotListMirror{
		client: client,
		log:    logrus.WithField("component", "aggregator-hotlist-mirror"),
	}, nil
}

// Publish replaces the mirrored hot list with the given snapshot.
func (m *HotListMirror) Publish(ctx context.Context, assets []state.Asset) {
	payload, err := json.Marshal(assets)
	if err != nil {
		m.log.WithError(err).Error("marshal hot list failed")
		return
	}
	if err := m.client.Set(ctx, hotListRedisKey, payload, 0).Err(); err != nil {
		m.log.WithError(err).Error("publish hot list to redis failed")
	}
}

// Close closes the underlying Redis client.
func (m *HotListMirror) Close() error {
	return m.client.Close()
}
