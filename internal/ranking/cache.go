package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Invalidator 作品分数或状态变化后使赛事排行榜缓存失效
type Invalidator interface {
	Invalidate(ctx context.Context, eventID uint)
}

// Cache 按赛事版本号缓存排行榜分页。失效时只递增版本号，旧版本的 key 等待过期。
// client 为 nil 或 ttl 为 0 时所有操作都是空操作
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func versionKey(eventID uint) string {
	return fmt.Sprintf("leaderboard:%d:version", eventID)
}

func pageKey(eventID uint, version int64, limit, offset int) string {
	return fmt.Sprintf("leaderboard:%d:v%d:%d:%d", eventID, version, limit, offset)
}

func (c *Cache) version(ctx context.Context, eventID uint) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(eventID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// Get 返回缓存的分页以及读取时的版本号；version 为 -1 表示缓存不可用
func (c *Cache) Get(ctx context.Context, eventID uint, limit, offset int) (board *Board, version int64, ok bool) {
	if !c.enabled() {
		return nil, -1, false
	}
	version, err := c.version(ctx, eventID)
	if err != nil {
		c.log.Warn("读取排行榜版本失败", "event_id", eventID, "error", err)
		return nil, -1, false
	}
	data, err := c.client.Get(ctx, pageKey(eventID, version, limit, offset)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("读取排行榜缓存失败", "event_id", eventID, "error", err)
		}
		return nil, version, false
	}
	board = &Board{}
	if err := json.Unmarshal(data, board); err != nil {
		return nil, version, false
	}
	return board, version, true
}

// Set 按查询前读到的版本号写入，期间发生的失效会让这次写入自然作废
func (c *Cache) Set(ctx context.Context, board *Board, version int64) {
	if !c.enabled() || version < 0 {
		return
	}
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	key := pageKey(board.EventID, version, board.Limit, board.Offset)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("写入排行榜缓存失败", "event_id", board.EventID, "error", err)
	}
}

// Invalidate 递增赛事版本号，之后的读取都会落到数据库
func (c *Cache) Invalidate(ctx context.Context, eventID uint) {
	if !c.enabled() {
		return
	}
	if err := c.client.Incr(ctx, versionKey(eventID)).Err(); err != nil {
		c.log.Error("排行榜缓存失效失败", "event_id", eventID, "error", err)
	}
}
