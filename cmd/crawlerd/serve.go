package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"remotejobs-crawler/internal/config"
	"remotejobs-crawler/internal/httpapi"
	"remotejobs-crawler/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trigger API and crawl on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a, f, runNow)
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "start a crawl session immediately")
	return cmd
}

func serve(ctx context.Context, a *app, f *rootFlags, runNow bool) error {
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(a.cfg)

	handler := httpapi.Handler(httpapi.Deps{
		Manager:     a.manager,
		Poller:      a.poller,
		Store:       a.store,
		Hub:         a.hub,
		Log:         a.log.Named("http"),
		CfgVal:      &cfgVal,
		UserCfgPath: a.cfgPath,
		LoadCfg: func() (config.Config, error) {
			cfg, _, err := f.loadConfig()
			return cfg, err
		},
		Metrics: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
	})

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("listening", zap.String("addr", "http://"+addr), zap.String("store", a.cfg.Store.Driver))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if a.cfg.Schedule.Enabled {
		sched := scheduler.New(a.cfg.Schedule.Spec, "crawl_all", func(ctx context.Context) error {
			_, _, err := a.poller.Run(ctx)
			return err
		}, a.log)
		g.Go(func() error { return sched.Run(gctx, runNow) })
	} else if runNow {
		g.Go(func() error {
			_, _, err := a.poller.Run(gctx)
			return err
		})
	}

	return g.Wait()
}
