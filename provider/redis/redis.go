package redis

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/sessioncache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

const defaultPingTimeout = 2 * time.Second

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client

	// Used by Dial when Client is nil.
	Host        string
	Port        int
	Password    string
	DB          int
	PingTimeout time.Duration // 0 => 2s
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Dial returns a Dialer that connects to cfg.Host:cfg.Port (or uses cfg.Client)
// and pings the server before handing out the provider. A client created by
// Dial is owned, and closed, by the provider.
func Dial(cfg Config) pr.Dialer {
	return func(ctx context.Context) (pr.Provider, error) {
		rdb := cfg.Client
		owned := cfg.CloseClient
		if rdb == nil {
			rdb = goredis.NewClient(&goredis.Options{
				Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
				Password: cfg.Password,
				DB:       cfg.DB,
			})
			owned = true
		}

		timeout := cfg.PingTimeout
		if timeout <= 0 {
			timeout = defaultPingTimeout
		}
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := rdb.Ping(pctx).Err(); err != nil {
			if owned {
				_ = rdb.Close()
			}
			return nil, err
		}
		return &Redis{rdb: rdb, closeClient: owned}, nil
	}
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}

	err := p.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
