package kv

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNil is returned when a key or field does not exist.
var ErrNil = errors.New("kv: nil value")

const (
	commandTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second
)

// Client is the typed facade over the shared Redis backend.
//
// The underlying pool is bounded (poolSize connections, FIFO reuse) and
// blocks rather than fails when saturated. Every command observes connection
// errors and flips the availability flag, so long-running loops can suspend
// themselves instead of spinning against a dead backend.
type Client struct {
	rdb       *redis.Client
	available atomic.Bool
}

// New creates a client for the given address. poolSize <= 0 falls back to 10.
func New(addr string, poolSize int) *Client {
	if poolSize <= 0 {
		poolSize = 10
	}
	c := &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			PoolSize:     poolSize,
			PoolFIFO:     true,
			PoolTimeout:  commandTimeout,
			DialTimeout:  connectTimeout,
			ReadTimeout:  commandTimeout,
			WriteTimeout: commandTimeout,
		}),
	}
	c.available.Store(true)
	return c
}

// Available reports the last observed backend liveness. It turns false on
// any connection error and true again after a successful Ping.
func (c *Client) Available() bool {
	return c.available.Load()
}

// Ping probes the backend and updates the availability flag.
func (c *Client) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	c.available.Store(err == nil)
	return err
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// observe records command outcomes for the availability flag. A missing key
// is a normal outcome, not an outage.
func (c *Client) observe(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		c.available.Store(true)
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	c.available.Store(false)
	return err
}

// HashGet reads one hash field. Returns ErrNil when the field is absent.
func (c *Client) HashGet(ctx context.Context, key, field string) (string, error) {
	v, err := c.rdb.HGet(ctx, key, field).Result()
	if c.observe(err) != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNil
		}
		return "", err
	}
	return v, nil
}

// HashSet writes field/value pairs into a hash.
func (c *Client) HashSet(ctx context.Context, key string, pairs ...any) error {
	return c.observe(c.rdb.HSet(ctx, key, pairs...).Err())
}

// HashGetAll reads every field of a hash. A missing key yields an empty map.
func (c *Client) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	v, err := c.rdb.HGetAll(ctx, key).Result()
	if c.observe(err) != nil {
		return nil, err
	}
	return v, nil
}

// HashDel removes fields from a hash.
func (c *Client) HashDel(ctx context.Context, key string, fields ...string) error {
	return c.observe(c.rdb.HDel(ctx, key, fields...).Err())
}

// StringSet writes a plain key with an optional TTL (0 = no expiry).
func (c *Client) StringSet(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.observe(c.rdb.Set(ctx, key, value, ttl).Err())
}

// StringGet reads a plain key. Returns ErrNil when absent.
func (c *Client) StringGet(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if c.observe(err) != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNil
		}
		return "", err
	}
	return v, nil
}

// SetAdd adds members to a set.
func (c *Client) SetAdd(ctx context.Context, key string, members ...any) error {
	return c.observe(c.rdb.SAdd(ctx, key, members...).Err())
}

// SetRem removes members from a set.
func (c *Client) SetRem(ctx context.Context, key string, members ...any) error {
	return c.observe(c.rdb.SRem(ctx, key, members...).Err())
}

// SetMembers lists the members of a set.
func (c *Client) SetMembers(ctx context.Context, key string) ([]string, error) {
	v, err := c.rdb.SMembers(ctx, key).Result()
	if c.observe(err) != nil {
		return nil, err
	}
	return v, nil
}

// ZSetAdd inserts or updates a scored member.
func (c *Client) ZSetAdd(ctx context.Context, key string, score float64, member string) error {
	return c.observe(c.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err())
}

// ZSetRem removes members from a sorted set.
func (c *Client) ZSetRem(ctx context.Context, key string, members ...any) error {
	return c.observe(c.rdb.ZRem(ctx, key, members...).Err())
}

// ZSetRange returns members by rank; use 0, -1 for the full set.
func (c *Client) ZSetRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	v, err := c.rdb.ZRange(ctx, key, start, stop).Result()
	if c.observe(err) != nil {
		return nil, err
	}
	return v, nil
}

// ListLPush prepends values to a list.
func (c *Client) ListLPush(ctx context.Context, key string, values ...any) error {
	return c.observe(c.rdb.LPush(ctx, key, values...).Err())
}

// ListLTrim trims a list to the given rank range.
func (c *Client) ListLTrim(ctx context.Context, key string, start, stop int64) error {
	return c.observe(c.rdb.LTrim(ctx, key, start, stop).Err())
}

// ListLRange reads list entries by rank; use 0, -1 for the whole list.
func (c *Client) ListLRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	v, err := c.rdb.LRange(ctx, key, start, stop).Result()
	if c.observe(err) != nil {
		return nil, err
	}
	return v, nil
}

// Exists reports whether the key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if c.observe(err) != nil {
		return false, err
	}
	return n > 0, nil
}
