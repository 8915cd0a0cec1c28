package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Scheduler fires one task on a cron spec ("@every 4h", "0 */4 * * *").
// Overlapping ticks are skipped while the previous run is still going.
type Scheduler struct {
	cron *cron.Cron
	spec string
	name string
	task Task
	log  *zap.Logger

	wg sync.WaitGroup
}

func New(spec, name string, task Task, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec: spec,
		name: name,
		task: task,
		log:  log,
	}
}

// Start registers the task and starts the cron loop. With runNow the task also
// runs once immediately in the background.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("cron started", zap.String("task", s.name), zap.String("spec", s.spec))

	if runNow {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(ctx)
		}()
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.task(ctx); err != nil {
		s.log.Error("task failed", zap.String("task", s.name), zap.Error(err))
	}
}

// Stop halts the cron loop and waits for running tasks to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("cron stopped", zap.String("task", s.name))
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context, runNow bool) error {
	if err := s.Start(ctx, runNow); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, kv ...any) { l.s.Debugw(msg, kv...) }

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}
