package std

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	bigcacheStore "github.com/eko/gocache/store/bigcache/v4"
	"github.com/ichaly/ideabase/utl"
)

// Cache 进程内缓存，值以JSON形式保存
type Cache struct {
	cache  *cache.Cache[[]byte]
	exp    time.Duration
	prefix string
}

// NewCache 创建基于bigcache的缓存，exp为条目有效期
func NewCache(ctx context.Context, prefix string, exp time.Duration) (*Cache, error) {
	if exp <= 0 {
		exp = 10 * time.Minute
	}
	conf := bigcache.DefaultConfig(exp)
	conf.Verbose = false
	conf.CleanWindow = exp
	client, err := bigcache.New(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("创建缓存失败: %w", err)
	}
	return &Cache{
		cache:  cache.New[[]byte](bigcacheStore.NewBigcache(client)),
		exp:    exp,
		prefix: prefix,
	}, nil
}

// Key 根据多个片段生成缓存键
func (my *Cache) Key(parts ...string) string {
	seg := make([]string, 0, len(parts)*2)
	for _, p := range parts {
		seg = append(seg, p, "\x00")
	}
	return utl.JoinString(my.prefix, ":", utl.MD5(utl.JoinString(seg...)))
}

// Get 读取缓存并解析到v，未命中返回false
func (my *Cache) Get(ctx context.Context, key string, v any) bool {
	raw, err := my.cache.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return false
	}
	return utl.Unmarshal(raw, v) == nil
}

// Set 写入缓存
func (my *Cache) Set(ctx context.Context, key string, v any) error {
	raw, err := utl.Marshal(v)
	if err != nil {
		return err
	}
	return my.cache.Set(ctx, key, raw, store.WithExpiration(my.exp))
}

// Clear 清空缓存
func (my *Cache) Clear(ctx context.Context) error {
	return my.cache.Clear(ctx)
}
