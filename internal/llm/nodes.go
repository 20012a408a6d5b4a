package llm

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NodeDirectory is the process-wide cache of the last node that answered
// successfully, so a new task prefers the node everyone else just proved
// reachable instead of starting cold (spec §5 "Node directory", grounded
// on GonkaChatModel's class-level _last_successful_node cache). Backed by
// Redis so the cache survives across worker processes, not just goroutines
// in one.
type NodeDirectory struct {
	rdb *redis.Client
	key string
}

// NewNodeDirectory wraps a redis client for one logical backend's node
// cache (e.g. "gonka" or "openrouter").
func NewNodeDirectory(rdb *redis.Client, backend string) *NodeDirectory {
	return &NodeDirectory{rdb: rdb, key: "llm:last_node:" + backend}
}

// Last returns the cached node URL, or "" if none is recorded or Redis is
// unreachable — a cache miss here only costs a cold connect, never a hard
// failure.
func (d *NodeDirectory) Last(ctx context.Context) string {
	if d == nil || d.rdb == nil {
		return ""
	}
	v, err := d.rdb.Get(ctx, d.key).Result()
	if err != nil {
		return ""
	}
	return v
}

// Remember records a node as the most recent success, best-effort.
func (d *NodeDirectory) Remember(ctx context.Context, node string) {
	if d == nil || d.rdb == nil || node == "" {
		return
	}
	d.rdb.Set(ctx, d.key, node, 24*time.Hour)
}
