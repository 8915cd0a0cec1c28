package scrape

import (
	"context"
	"fmt"
	"time"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/rank"
	"remotejobs-crawler/internal/scrape/types"
	"remotejobs-crawler/internal/scrape/util"

	"go.uber.org/zap"
)

// Observer receives per-page crawl telemetry.
type Observer interface {
	PageFetched(crawler string, took time.Duration, err error)
	RecordsScored(crawler string, accepted, rejected, failed int)
}

type nopObserver struct{}

func (nopObserver) PageFetched(string, time.Duration, error) {}
func (nopObserver) RecordsScored(string, int, int, int)      {}

// Crawler walks the pages of one source through its Adapter, pacing requests
// to cfg.PerMinute().
type Crawler[R any] struct {
	cfg      types.Config
	adapter  types.Adapter[R]
	scorer   Scorer
	log      *zap.Logger
	observer Observer
	now      func() time.Time
}

type Option func(*options)

type options struct {
	scorer   Scorer
	log      *zap.Logger
	observer Observer
	now      func() time.Time
}

func WithScorer(s Scorer) Option {
	return func(o *options) { o.scorer = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithObserver(ob Observer) Option {
	return func(o *options) { o.observer = ob }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New[R any](cfg types.Config, adapter types.Adapter[R], opts ...Option) *Crawler[R] {
	o := options{
		scorer:   rank.Default(),
		log:      zap.NewNop(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Crawler[R]{
		cfg:      cfg,
		adapter:  adapter,
		scorer:   o.scorer,
		log:      o.log.With(zap.String("crawler", cfg.Name), zap.String("source", string(cfg.Source))),
		observer: o.observer,
		now:      o.now,
	}
}

func (c *Crawler[R]) Name() string         { return c.cfg.Name }
func (c *Crawler[R]) Config() types.Config { return c.cfg }

func (c *Crawler[R]) Crawl(ctx context.Context) (res types.Result) {
	res = types.Result{Errors: []string{}, Jobs: []domain.CandidateJob{}}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("crawler panicked", zap.Any("panic", r))
			res.Errors = append(res.Errors, fmt.Sprintf("Crawler failed: %v", r))
			res.Success = false
			res.NextCrawlAt = nil
		}
	}()

	pacer := util.NewPacer(c.cfg.PerMinute())
	maxPages := c.cfg.PageLimit()

	for page := 1; page <= maxPages; page++ {
		if err := pacer.Wait(ctx); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Page %d failed: %v", page, err))
			break
		}

		hasMore, err := c.crawlPage(ctx, page, &res)
		if err != nil {
			c.log.Warn("page failed", zap.Int("page", page), zap.Error(err))
			res.Errors = append(res.Errors, fmt.Sprintf("Page %d failed: %v", page, err))
			break
		}
		if !hasMore {
			break
		}
	}

	res.Success = len(res.Errors) == 0 || res.JobsProcessed > 0
	next := c.now().Add(types.NextCrawlDelay)
	res.NextCrawlAt = &next

	c.log.Info("crawl finished",
		zap.Int("found", res.JobsFound),
		zap.Int("processed", res.JobsProcessed),
		zap.Int("errors", len(res.Errors)),
		zap.Bool("success", res.Success))
	return res
}

func (c *Crawler[R]) crawlPage(ctx context.Context, page int, res *types.Result) (bool, error) {
	pctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout())
	defer cancel()

	start := time.Now()
	p, err := c.adapter.FetchPage(pctx, page)
	c.observer.PageFetched(c.cfg.Name, time.Since(start), err)
	if err != nil {
		return false, err
	}

	res.JobsFound += len(p.Records)
	accepted, rejected, failed := 0, 0, 0
	for _, raw := range p.Records {
		job, ok, err := NormalizeAndScore(raw, c.adapter, c.cfg, c.scorer, c.now())
		if err != nil {
			failed++
			c.log.Warn("skipping record", zap.Int("page", page), zap.Error(err))
			continue
		}
		if !ok {
			rejected++
			continue
		}
		accepted++
		res.Jobs = append(res.Jobs, job)
		res.JobsProcessed++
	}
	c.observer.RecordsScored(c.cfg.Name, accepted, rejected, failed)

	c.log.Debug("page done",
		zap.Int("page", page),
		zap.Int("found", len(p.Records)),
		zap.Int("accepted", accepted))
	return p.HasMore, nil
}
