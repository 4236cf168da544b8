package seen

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store 保存历史运行里已投递的文章 URL。
// 约定：Load 在没有历史状态时返回空集合而不是错误；
// Save 尽力而为，后端不可用时不产生副作用也不让运行失败。
type Store interface {
	Load(ctx context.Context) (map[string]struct{}, error)
	Save(ctx context.Context, urls map[string]struct{}) error
}

// Noop 占位实现：不跨运行记忆任何东西
type Noop struct{}

func (Noop) Load(ctx context.Context) (map[string]struct{}, error) {
	return make(map[string]struct{}), nil
}

func (Noop) Save(ctx context.Context, urls map[string]struct{}) error {
	return nil
}

// Memory 进程内实现，单次运行和测试用
type Memory struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{urls: make(map[string]struct{})}
}

func (m *Memory) Load(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.urls))
	for u := range m.urls {
		out[u] = struct{}{}
	}
	return out, nil
}

func (m *Memory) Save(ctx context.Context, urls map[string]struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for u := range urls {
		m.urls[u] = struct{}{}
	}
	return nil
}

const redisSeenKey = "digest:seen_urls"

// Redis 用一个 set 跨运行保存已投递 URL
type Redis struct {
	cli *redis.Client
	key string
}

func NewRedis(cli *redis.Client) *Redis {
	return &Redis{cli: cli, key: redisSeenKey}
}

func (r *Redis) Load(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	members, err := r.cli.SMembers(ctx, r.key).Result()
	if err != nil {
		// 没有历史状态或 Redis 不可用都按空集合处理
		log.Printf("seen: load from redis failed, starting empty: %v", err)
		return out, nil
	}
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

func (r *Redis) Save(ctx context.Context, urls map[string]struct{}) error {
	if len(urls) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(urls))
	for u := range urls {
		members = append(members, u)
	}
	// SADD 天然幂等；失败只记日志，不影响本轮结果
	if err := r.cli.SAdd(ctx, r.key, members...).Err(); err != nil {
		log.Printf("seen: save to redis failed: %v", err)
	}
	return nil
}
