package history

import (
	"context"
	"fmt"
	"io"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the recorder for driver ("memory" or "redis").
func Open(ctx context.Context, driver, redisURL string) (Recorder, io.Closer, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nopCloser{}, nil
	case "redis":
		r, err := DialRedis(ctx, redisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownDriver, driver)
	}
}
