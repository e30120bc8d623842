// Package cache provides Valkey (Redis-compatible) client initialization
// and a response cache for public content listings.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// connectTimeout bounds the initial ping. The cache is optional, so a
// slow or absent Valkey should fail startup quickly rather than hang it.
const connectTimeout = 5 * time.Second

// ConnectValkey creates a Valkey client and verifies the connection with
// a ping. The listing cache is small and read-mostly, so the default
// pool settings are kept.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
