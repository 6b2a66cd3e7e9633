package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPingTimeout = 3 * time.Second
	redisIOTimeout   = 500 * time.Millisecond
)

// ConnectRedis builds the client shared by the metrics cache and grade events.
// Unless the URL sets them, reads and writes time out after 500ms.
func ConnectRedis(url string) (*redis.Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("redis url must not be empty")
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if options.ReadTimeout == 0 {
		options.ReadTimeout = redisIOTimeout
	}
	if options.WriteTimeout == 0 {
		options.WriteTimeout = redisIOTimeout
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
