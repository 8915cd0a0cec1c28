package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "crawler:runs:"

// Redis stores runs as a capped JSON list per crawler, newest at index 0.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }

func (r *Redis) Record(ctx context.Context, run Run) error {
	b, err := json.Marshal(run)
	if err != nil {
		return err
	}
	key := keyPrefix + run.Crawler
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, b)
		p.LTrim(ctx, key, 0, Keep-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record run for %s: %w", run.Crawler, err)
	}
	return nil
}

func (r *Redis) Last(ctx context.Context, crawler string) (Run, bool, error) {
	raw, err := r.rdb.LIndex(ctx, keyPrefix+crawler, 0).Bytes()
	if err == redis.Nil {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return Run{}, false, fmt.Errorf("decode run: %w", err)
	}
	return run, true, nil
}

func (r *Redis) Recent(ctx context.Context, crawler string, n int) ([]Run, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}
	raws, err := r.rdb.LRange(ctx, keyPrefix+crawler, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Run, 0, len(raws))
	for _, s := range raws {
		var run Run
		if err := json.Unmarshal([]byte(s), &run); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		out = append(out, run)
	}
	return out, nil
}
