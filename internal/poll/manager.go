package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/history"
	"remotejobs-crawler/internal/rank"
	"remotejobs-crawler/internal/scrape/types"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const DefaultInterCrawlerDelay = 2 * time.Second

var ErrUnknownCrawler = errors.New("crawler not found")

type CrawlerRun struct {
	CrawlerName string       `json:"crawlerName"`
	Result      types.Result `json:"result"`
}

// SessionResult is the report of one RunAll.
type SessionResult struct {
	SessionID          string                `json:"sessionId"`
	StartedAt          time.Time             `json:"startedAt"`
	CompletedAt        time.Time             `json:"completedAt"`
	TotalCrawlers      int                   `json:"totalCrawlers"`
	SuccessfulCrawlers int                   `json:"successfulCrawlers"`
	TotalJobsFound     int                   `json:"totalJobsFound"`
	TotalJobsProcessed int                   `json:"totalJobsProcessed"`
	DuplicatesRemoved  int                   `json:"duplicatesRemoved"`
	Errors             []string              `json:"errors"`
	Results            []CrawlerRun          `json:"results"`
	FinalJobs          []domain.CandidateJob `json:"finalJobs"`
}

type Stat struct {
	Name    string        `json:"name"`
	Source  domain.Source `json:"source"`
	Enabled bool          `json:"enabled"`
	Running bool          `json:"running"`
	LastRun *time.Time    `json:"lastRun,omitempty"`
}

// Manager owns the configured crawlers. One crawler runs at a time, whether
// inside a session or through RunSpecific; Disable cancels a crawler's
// in-flight run through its context.
type Manager struct {
	mu       sync.Mutex
	configs  []types.Config
	crawlers map[string]types.Crawler
	running  map[string]context.CancelFunc
	runs     *semaphore.Weighted

	registry *Registry
	delay    time.Duration
	log      *zap.Logger
	history  history.Recorder
	events   events.Publisher
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	onDone   func(*SessionResult)

	sf singleflight.Group
}

type ManagerOption func(*Manager)

func WithDelay(d time.Duration) ManagerOption {
	return func(m *Manager) { m.delay = d }
}

func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

func WithHistory(h history.Recorder) ManagerOption {
	return func(m *Manager) { m.history = h }
}

func WithEvents(p events.Publisher) ManagerOption {
	return func(m *Manager) { m.events = p }
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithSessionHook calls fn with every finished session.
func WithSessionHook(fn func(*SessionResult)) ManagerOption {
	return func(m *Manager) { m.onDone = fn }
}

func NewManager(configs []types.Config, registry *Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		configs:  append([]types.Config(nil), configs...),
		running:  map[string]context.CancelFunc{},
		runs:     semaphore.NewWeighted(1),
		registry: registry,
		delay:    DefaultInterCrawlerDelay,
		log:      zap.NewNop(),
		history:  history.NewMemory(),
		now:      time.Now,
		sleep:    sleepCtx,
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.Named("manager")

	m.mu.Lock()
	m.initLocked()
	m.mu.Unlock()
	return m
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// initLocked rebuilds the instance map from the enabled configs. Unknown
// sources are logged and skipped.
func (m *Manager) initLocked() {
	m.crawlers = make(map[string]types.Crawler, len(m.configs))
	for _, cfg := range m.configs {
		if !cfg.Enabled {
			continue
		}
		c, err := m.registry.Build(cfg)
		if err != nil {
			m.log.Warn("skipping crawler",
				zap.String("crawler", cfg.Name),
				zap.String("source", string(cfg.Source)),
				zap.Error(err))
			continue
		}
		m.crawlers[cfg.Name] = c
	}
}

// activeLocked lists instances in config order.
func (m *Manager) activeLocked() []types.Crawler {
	out := make([]types.Crawler, 0, len(m.crawlers))
	for _, cfg := range m.configs {
		if c, ok := m.crawlers[cfg.Name]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (m *Manager) stillActive(c types.Crawler) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.crawlers[c.Name()]
	return ok
}

// RunAll runs every enabled crawler in order with the inter-crawler delay
// between them, then dedups and ranks what the successful ones returned.
// Concurrent callers share one session.
func (m *Manager) RunAll(ctx context.Context) *SessionResult {
	v, _, _ := m.sf.Do("run_all", func() (any, error) {
		return m.runAll(ctx), nil
	})
	return v.(*SessionResult)
}

func (m *Manager) runAll(ctx context.Context) *SessionResult {
	waitErr := m.runs.Acquire(ctx, 1)
	if waitErr == nil {
		defer m.runs.Release(1)
	}

	m.mu.Lock()
	active := m.activeLocked()
	m.mu.Unlock()

	start := m.now()
	s := &SessionResult{
		SessionID:     fmt.Sprintf("session-%d", start.UnixMilli()),
		StartedAt:     start,
		TotalCrawlers: len(active),
		Errors:        []string{},
		Results:       []CrawlerRun{},
	}
	log := m.log.With(zap.String("session", s.SessionID))
	log.Info("starting crawl session", zap.Int("crawlers", len(active)))

	var collected []domain.CandidateJob
	if waitErr != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("session not started: %v", waitErr))
		active = nil
	}
	for i, c := range active {
		name := c.Name()
		if err := ctx.Err(); err != nil {
			s.Errors = append(s.Errors, fmt.Sprintf("session stopped before %s: %v", name, err))
			break
		}
		if i > 0 {
			if err := m.sleep(ctx, m.delay); err != nil {
				s.Errors = append(s.Errors, fmt.Sprintf("session stopped before %s: %v", name, err))
				break
			}
		}
		if !m.stillActive(c) {
			log.Info("crawler disabled during session", zap.String("crawler", name))
			continue
		}

		res, err := m.invoke(ctx, s.SessionID, c)
		if err != nil {
			msg := fmt.Sprintf("Failed to run crawler %s: %v", name, err)
			s.Errors = append(s.Errors, msg)
			log.Error("crawler failed", zap.String("crawler", name), zap.Error(err))
			continue
		}

		s.Results = append(s.Results, CrawlerRun{CrawlerName: name, Result: res})
		s.TotalJobsFound += res.JobsFound
		s.TotalJobsProcessed += res.JobsProcessed
		if res.Success {
			s.SuccessfulCrawlers++
			collected = append(collected, res.Jobs...)
		}
		for _, e := range res.Errors {
			s.Errors = append(s.Errors, name+": "+e)
		}
		log.Info("crawler done",
			zap.String("crawler", name),
			zap.Int("found", res.JobsFound),
			zap.Int("processed", res.JobsProcessed))
	}

	if groups := rank.FindDuplicateGroups(collected); len(groups) > 0 {
		log.Debug("duplicate postings across crawlers", zap.Any("groups", groups))
	}
	deduped, _ := rank.RemoveDuplicates(collected)
	s.DuplicatesRemoved = s.TotalJobsProcessed - len(deduped)
	s.FinalJobs = rank.SortByRelevance(deduped)
	s.CompletedAt = m.now()

	log.Info("crawl session completed",
		zap.Int("unique", len(s.FinalJobs)),
		zap.Int("duplicates", s.DuplicatesRemoved),
		zap.Int("errors", len(s.Errors)))
	events.Emit(m.events, events.CrawlSessionCompleted, map[string]any{
		"sessionId":          s.SessionID,
		"successfulCrawlers": s.SuccessfulCrawlers,
		"totalCrawlers":      s.TotalCrawlers,
		"jobs":               len(s.FinalJobs),
		"duplicatesRemoved":  s.DuplicatesRemoved,
	})
	if m.onDone != nil {
		m.onDone(s)
	}
	return s
}

// RunSpecific runs one named crawler, waiting for any session in progress to
// finish first. It returns nil when no enabled crawler has that name.
func (m *Manager) RunSpecific(ctx context.Context, name string) *types.Result {
	m.mu.Lock()
	_, ok := m.crawlers[name]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if err := m.runs.Acquire(ctx, 1); err != nil {
		return &types.Result{
			Errors: []string{fmt.Sprintf("Failed to run crawler %s: %v", name, err)},
			Jobs:   []domain.CandidateJob{},
		}
	}
	defer m.runs.Release(1)

	// the crawler may have been disabled while we waited
	m.mu.Lock()
	c, ok := m.crawlers[name]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	res, err := m.invoke(ctx, "", c)
	if err != nil {
		res = types.Result{
			Errors: []string{fmt.Sprintf("Failed to run crawler %s: %v", name, err)},
			Jobs:   []domain.CandidateJob{},
		}
	}
	return &res
}

// invoke runs c under a cancellable context registered for Disable. The
// caller holds m.runs. A panic escaping Crawl comes back as err.
func (m *Manager) invoke(ctx context.Context, sessionID string, c types.Crawler) (res types.Result, err error) {
	name := c.Name()
	cctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.running[name] = cancel
	m.mu.Unlock()

	defer func() {
		cancel()
		m.mu.Lock()
		delete(m.running, name)
		m.mu.Unlock()
	}()

	started := m.now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		res = c.Crawl(cctx)
	}()

	run := history.Run{
		Crawler:       name,
		SessionID:     sessionID,
		StartedAt:     started,
		FinishedAt:    m.now(),
		Success:       err == nil && res.Success,
		JobsFound:     res.JobsFound,
		JobsProcessed: res.JobsProcessed,
		Errors:        res.Errors,
	}
	if err != nil {
		run.Errors = []string{err.Error()}
	}
	if herr := m.history.Record(context.WithoutCancel(ctx), run); herr != nil {
		m.log.Warn("record run", zap.String("crawler", name), zap.Error(herr))
	}
	events.Emit(m.events, events.CrawlerCompleted, map[string]any{
		"crawler":       name,
		"success":       run.Success,
		"jobsFound":     run.JobsFound,
		"jobsProcessed": run.JobsProcessed,
	})
	return res, err
}

func (m *Manager) configIndex(name string) int {
	for i, c := range m.configs {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Enable marks the named config enabled and rebuilds the instances. It
// reports whether the name is configured.
func (m *Manager) Enable(name string) bool {
	m.mu.Lock()
	i := m.configIndex(name)
	if i < 0 {
		m.mu.Unlock()
		return false
	}
	m.configs[i].Enabled = true
	m.initLocked()
	m.mu.Unlock()

	m.log.Info("crawler enabled", zap.String("crawler", name))
	events.Emit(m.events, events.CrawlerEnabled, map[string]string{"crawler": name})
	return true
}

// Disable removes the instance and cancels any run of it still in flight.
func (m *Manager) Disable(name string) bool {
	m.mu.Lock()
	i := m.configIndex(name)
	if i < 0 {
		m.mu.Unlock()
		return false
	}
	m.configs[i].Enabled = false
	delete(m.crawlers, name)
	if cancel, ok := m.running[name]; ok {
		cancel()
	}
	m.mu.Unlock()

	m.log.Info("crawler disabled", zap.String("crawler", name))
	events.Emit(m.events, events.CrawlerDisabled, map[string]string{"crawler": name})
	return true
}

// Stats reports every configured crawler, including disabled ones and those
// whose source has no adapter.
func (m *Manager) Stats(ctx context.Context) []Stat {
	m.mu.Lock()
	out := make([]Stat, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, Stat{
			Name:    cfg.Name,
			Source:  cfg.Source,
			Enabled: cfg.Enabled,
			Running: m.running[cfg.Name] != nil,
		})
	}
	m.mu.Unlock()

	for i := range out {
		run, ok, err := m.history.Last(ctx, out[i].Name)
		if err != nil {
			m.log.Warn("load last run", zap.String("crawler", out[i].Name), zap.Error(err))
			continue
		}
		if ok {
			at := run.FinishedAt
			out[i].LastRun = &at
		}
	}
	return out
}

// Configs returns a copy of the current crawler configs.
func (m *Manager) Configs() []types.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Config(nil), m.configs...)
}

// Active returns the names of the instantiated crawlers in config order.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, c := range m.activeLocked() {
		names = append(names, c.Name())
	}
	return names
}
