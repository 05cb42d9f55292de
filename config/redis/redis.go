package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// leaseTTL bounds how long a reader may take between leasing a key and filling it.
const leaseTTL = 5 * time.Second

var fillScript = redis.NewScript(`
if redis.call("GET", KEYS[2]) ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
redis.call("DEL", KEYS[2])
return 1
`)

func leaseKey(key string) string {
	return "lease:" + key
}

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

/*
* Build the client from the configured address
* Ping once so a misconfigured cache fails at startup
 */
func Connect(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info().Str("addr", addr).Msg("Connected to Redis")
	return New(rdb, ttl), nil
}

func New(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCache decodes the cached value into dest and reports whether the key was present.
func (c *Client) GetCache(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("unmarshal cache value: %w", err)
	}
	return true, nil
}

// LeaseCache reserves key for one fill with SET NX. It returns "" while another fill holds it.
func (c *Client) LeaseCache(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, leaseKey(key), token, leaseTTL).Result()
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

/*
* Store value only while token still holds the lease
* Any DeleteCache on key in the meantime drops the lease and the fill
 */
func (c *Client) FillCache(ctx context.Context, key, token string, value any) (bool, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("marshal cache value: %w", err)
	}
	n, err := fillScript.Run(ctx, c.rdb, []string{key, leaseKey(key)}, token, payload, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteCache drops keys and any fill lease on them.
func (c *Client) DeleteCache(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	all := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		all = append(all, key, leaseKey(key))
	}
	return c.rdb.Del(ctx, all...).Err()
}
