package util

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits per hostname (boards-api.greenhouse.io, api.lever.co, ...)
// across every crawler sharing it.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}

// PaceInterval is the gap between requests for a per-minute budget.
func PaceInterval(perMinute int) time.Duration {
	if perMinute <= 0 {
		return 0
	}
	return time.Minute / time.Duration(perMinute)
}

// NewPacer returns a limiter releasing one request per PaceInterval(perMinute).
// Its initial token is spent, so the first Wait also blocks for a full interval.
func NewPacer(perMinute int) *rate.Limiter {
	iv := PaceInterval(perMinute)
	if iv <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	lim := rate.NewLimiter(rate.Every(iv), 1)
	lim.Allow()
	return lim
}
