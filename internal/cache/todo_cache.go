// Package cache puts an optional Redis read-through cache in front of the
// todo repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/logger"
	"github.com/Tomlord1122/tick/internal/repository"
)

const (
	keyItem = "todo:item:"
	keyList = "todo:list:"
	keyGen  = "todo:gen"
)

// fillScript stores ARGV[2] under KEYS[2] only while the generation in
// KEYS[1] still equals ARGV[1]. ARGV[3] is the TTL in milliseconds; 0 keeps
// the entry until it is invalidated.
var fillScript = redis.NewScript(`
if (redis.call("GET", KEYS[1]) or "0") ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

// TodoCache caches get-by-id and list results. Every write goes to the
// store first, then bumps the cache generation and drops the affected keys.
// A miss records the generation before reading the store and its fill is
// discarded if a write bumped it meanwhile, so a slow reader cannot put a
// pre-write row back. A cache failure is logged and never fails the request.
type TodoCache struct {
	next repository.TodoRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewTodoCache wraps next with a cache on rdb.
func NewTodoCache(next repository.TodoRepository, rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{next: next, rdb: rdb, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

var _ repository.TodoRepository = (*TodoCache)(nil)

func (c *TodoCache) List(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error) {
	key := listKey(q.Normalize())
	var todos []domain.Todo
	if c.get(ctx, key, &todos) {
		return todos, nil
	}
	gen, ok := c.generation(ctx)
	todos, err := c.next.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if ok {
		c.fill(ctx, gen, key, todos)
	}
	return todos, nil
}

func (c *TodoCache) FindByID(ctx context.Context, id int64) (domain.Todo, error) {
	key := itemKey(id)
	var todo domain.Todo
	if c.get(ctx, key, &todo) {
		return todo, nil
	}
	gen, ok := c.generation(ctx)
	todo, err := c.next.FindByID(ctx, id)
	if err != nil {
		return domain.Todo{}, err
	}
	if ok {
		c.fill(ctx, gen, key, todo)
	}
	return todo, nil
}

func (c *TodoCache) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	created, err := c.next.Create(ctx, todo)
	if err != nil {
		return domain.Todo{}, err
	}
	c.invalidate(ctx, created.ID)
	return created, nil
}

func (c *TodoCache) Update(ctx context.Context, todo domain.Todo) error {
	err := c.next.Update(ctx, todo)
	c.invalidate(ctx, todo.ID)
	return err
}

func (c *TodoCache) Delete(ctx context.Context, id int64) error {
	err := c.next.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

// Autocomplete is not cached.
func (c *TodoCache) Autocomplete(ctx context.Context, term string) ([]domain.Todo, error) {
	return c.next.Autocomplete(ctx, term)
}

func (c *TodoCache) SetDone(ctx context.Context, id int64, expect, done bool, finish domain.Timestamp) (bool, error) {
	ok, err := c.next.SetDone(ctx, id, expect, done, finish)
	c.invalidate(ctx, id)
	return ok, err
}

func (c *TodoCache) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		logger.C(ctx).Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return false
	}
	return true
}

// generation reads the current cache generation. ok is false when redis
// cannot be read, in which case the caller skips the fill.
func (c *TodoCache) generation(ctx context.Context) (gen string, ok bool) {
	gen, err := c.rdb.Get(ctx, keyGen).Result()
	if errors.Is(err, redis.Nil) {
		return "0", true
	}
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("cache generation read failed")
		return "", false
	}
	return gen, true
}

// fill stores v under key unless the generation moved past gen. It reports
// whether the entry was written.
func (c *TodoCache) fill(ctx context.Context, gen, key string, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	n, err := fillScript.Run(ctx, c.rdb, []string{keyGen, key}, gen, b, c.ttl.Milliseconds()).Int()
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
		return false
	}
	return n == 1
}

// invalidate bumps the generation, then drops the item key and every cached
// list page, since any write can move a row between pages.
func (c *TodoCache) invalidate(ctx context.Context, id int64) {
	log := logger.C(ctx)
	if err := c.rdb.Incr(ctx, keyGen).Err(); err != nil {
		log.Warn().Err(err).Msg("cache generation bump failed")
	}
	if err := c.rdb.Del(ctx, itemKey(id)).Err(); err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("cache invalidate failed")
	}
	iter := c.rdb.Scan(ctx, 0, keyList+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Warn().Err(err).Str("key", iter.Val()).Msg("cache invalidate failed")
		}
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("cache scan failed")
	}
}

func itemKey(id int64) string {
	return keyItem + strconv.FormatInt(id, 10)
}

// listKey encodes a normalized query; url.Values sorts keys, so equal
// queries share a key.
func listKey(q domain.ListQuery) string {
	v := url.Values{}
	v.Set("count", strconv.Itoa(q.Count))
	v.Set("offset", strconv.Itoa(q.Offset))
	v.Set("sort_by", string(q.SortBy))
	v.Set("order", string(q.Order))
	if q.Done != nil {
		v.Set("done", strconv.FormatBool(*q.Done))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return keyList + v.Encode()
}
