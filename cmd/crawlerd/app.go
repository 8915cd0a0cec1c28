package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"remotejobs-crawler/internal/config"
	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/history"
	"remotejobs-crawler/internal/logging"
	"remotejobs-crawler/internal/metrics"
	"remotejobs-crawler/internal/poll"
	"remotejobs-crawler/internal/rank"
	"remotejobs-crawler/internal/scrape"
	"remotejobs-crawler/internal/scrape/util"
	"remotejobs-crawler/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app is everything a command needs, built once from the loaded config.
type app struct {
	cfg     config.Config
	cfgPath string
	log     *zap.Logger

	engine   *rank.Engine
	store    store.JobStore
	history  history.Recorder
	hub      *events.Hub
	metrics  *metrics.Crawl
	registry *prometheus.Registry
	manager  *poll.Manager
	poller   *poll.Poller

	closers []io.Closer
}

func newApp(ctx context.Context, f *rootFlags) (*app, error) {
	cfg, cfgPath, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.App.LogLevel, cfg.App.Dev)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, cfgPath: cfgPath, log: log, hub: events.NewHub()}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	var err error
	if a.engine, err = rank.NewYAMLScorer(a.cfg, filepath.Dir(a.cfgPath)); err != nil {
		return fmt.Errorf("scoring policy: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.NewCrawl(a.registry)

	rec, hc, err := history.Open(ctx, a.cfg.History.Driver, a.cfg.History.RedisURL)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	a.history = rec
	a.closers = append(a.closers, hc)

	st, sc, err := store.Open(ctx, a.cfg.Store.Driver, a.cfg.Store.DSN, a.cfg.Store.Path, a.cfg.App.DataDir)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, sc)

	// ATS APIs are shared by many boards; stay polite per host on top of each crawler's pacing.
	client := util.NewJSONClient(util.NewHostLimiter(2, 2))
	crawlers := poll.DefaultRegistry(client,
		scrape.WithScorer(a.engine),
		scrape.WithLogger(a.log.Named("crawler")),
		scrape.WithObserver(a.metrics),
	)

	a.manager = poll.NewManager(scrape.ConfigsFromFile(a.cfg.Crawlers), crawlers,
		poll.WithDelay(a.cfg.InterCrawlerDelay()),
		poll.WithLogger(a.log),
		poll.WithHistory(a.history),
		poll.WithEvents(a.hub),
		poll.WithSessionHook(func(s *poll.SessionResult) {
			a.metrics.SessionCompleted(len(s.FinalJobs), s.DuplicatesRemoved)
		}),
	)
	a.poller = &poll.Poller{Manager: a.manager, Store: a.store, Events: a.hub, Log: a.log}
	return nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}
