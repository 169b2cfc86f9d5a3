package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/config"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"

	"github.com/go-redis/redis/v8"
)

const (
	jwtPrefix     = "jwt:blacklist:"
	sessionPrefix = "wizard:session:"
	catalogPrefix = "catalog:"

	sessionTTL = 24 * time.Hour
	catalogTTL = 10 * time.Minute
)

type Client struct {
	cfg    config.RedisConfig
	client *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	c := &Client{cfg: cfg}

	c.client = redis.NewClient(&redis.Options{
		Password:    cfg.Password,
		Username:    cfg.User,
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DB:          0,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	if err := c.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot ping redis: %w", err)
	}

	return c, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// IsNilErr reports whether err is the redis "key not found" error.
func IsNilErr(err error) bool {
	return errors.Is(err, redis.Nil)
}

// ============ JWT blacklist ============

func (c *Client) WriteJWTToBlacklist(ctx context.Context, jwtStr string, jwtTTL time.Duration) error {
	return c.client.Set(ctx, jwtPrefix+jwtStr, true, jwtTTL).Err()
}

// CheckJWTInBlacklist returns nil when the token IS blacklisted and
// redis.Nil when it is not.
func (c *Client) CheckJWTInBlacklist(ctx context.Context, jwtStr string) error {
	return c.client.Get(ctx, jwtPrefix+jwtStr).Err()
}

// ============ Wizard session store ============

func sessionKey(userID uint, sessionID string) string {
	return fmt.Sprintf("%s%d:%s", sessionPrefix, userID, sessionID)
}

func (c *Client) SaveSession(ctx context.Context, s *wizard.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal wizard session: %w", err)
	}
	return c.client.Set(ctx, sessionKey(s.UserID, s.ID), data, sessionTTL).Err()
}

func (c *Client) GetSession(ctx context.Context, userID uint, sessionID string) (*wizard.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(userID, sessionID)).Bytes()
	if err != nil {
		return nil, err
	}
	var s wizard.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal wizard session: %w", err)
	}
	return &s, nil
}

func (c *Client) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	return c.client.Del(ctx, sessionKey(userID, sessionID)).Err()
}

// ============ Catalog cache ============

func (c *Client) GetCatalog(ctx context.Context, key string) ([]wizard.Option, error) {
	data, err := c.client.Get(ctx, catalogPrefix+key).Bytes()
	if err != nil {
		return nil, err
	}
	var opts []wizard.Option
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (c *Client) SetCatalog(ctx context.Context, key string, opts []wizard.Option) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogPrefix+key, data, catalogTTL).Err()
}

// InvalidateCatalog drops every cached catalog list. Called after a
// completed order so the next wizard run sees fresh data.
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, catalogPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
