package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/swrcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb          goredis.UniversalClient
	closeClient  bool
	queryTimeout time.Duration
}

var (
	_ pr.Provider = (*Redis)(nil)
	_ pr.Adder    = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
	// QueryTimeout bounds every round-trip. 0 leaves the caller's context alone.
	QueryTimeout time.Duration
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, queryTimeout: cfg.QueryTimeout}, nil
}

func (p *Redis) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if p.queryTimeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, p.queryTimeout)
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	qctx, cancel := p.queryCtx(ctx)
	defer cancel()
	b, err := p.rdb.Get(qctx, key).Bytes()
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
	qctx, cancel := p.queryCtx(ctx)
	defer cancel()
	if err := p.rdb.Set(qctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Add maps to SET NX, which is atomic on the server.
func (p *Redis) Add(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0
	}
	qctx, cancel := p.queryCtx(ctx)
	defer cancel()
	return p.rdb.SetNX(qctx, key, value, ttl).Result()
}

func (p *Redis) Del(ctx context.Context, key string) error {
	qctx, cancel := p.queryCtx(ctx)
	defer cancel()
	return p.rdb.Del(qctx, key).Err()
}

// TTL reports the remaining lifetime of key (not part of provider.Provider).
// ok=false on miss; a zero duration with ok=true means no expiry.
func (p *Redis) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	qctx, cancel := p.queryCtx(ctx)
	defer cancel()
	d, err := p.rdb.PTTL(qctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	switch {
	case d == -2*time.Nanosecond || d == -2*time.Millisecond:
		return 0, false, nil
	case d < 0:
		return 0, true, nil
	}
	return d, true, nil
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
