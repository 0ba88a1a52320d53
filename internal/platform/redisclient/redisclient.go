// Package redisclient opens the optional redis connection.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Open returns a client that answered a PING.
func Open(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	if pong, err := client.Ping(ctx).Result(); pong != "PONG" || err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: test connection failed: %w", opts.Addr, err)
	}
	return client, nil
}
