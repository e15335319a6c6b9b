package main

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/swrcache/provider"
	"github.com/unkn0wn-root/swrcache/provider/memory"
	rp "github.com/unkn0wn-root/swrcache/provider/redis"
)

func openStore(ctx context.Context, s Settings) (pr.Provider, error) {
	if s.Redis == "" {
		return memory.New(memory.Config{CleanupInterval: time.Minute}), nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := goredis.NewClient(&goredis.Options{Addr: s.Redis})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", s.Redis, err)
	}
	store, err := rp.New(rp.Config{Client: client, CloseClient: true, QueryTimeout: 2 * time.Second})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// remainingTTL asks the store for key's remaining lifetime when it can tell.
// known=false when the key is missing or the store cannot report TTLs.
func remainingTTL(ctx context.Context, store pr.Provider, key string) (time.Duration, bool, error) {
	switch s := store.(type) {
	case *rp.Redis:
		return s.TTL(ctx, key)
	case *memory.Memory:
		d, ok := s.TTL(key)
		return d, ok, nil
	}
	return 0, false, nil
}
