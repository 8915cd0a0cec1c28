package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/history"
	"remotejobs-crawler/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCrawler struct {
	cfg   types.Config
	crawl func(ctx context.Context) types.Result
	calls int
	mu    sync.Mutex
}

func (f *fakeCrawler) Name() string         { return f.cfg.Name }
func (f *fakeCrawler) Config() types.Config { return f.cfg }

func (f *fakeCrawler) Crawl(ctx context.Context) types.Result {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.crawl(ctx)
}

func (f *fakeCrawler) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func job(id, title, company string, score int) domain.CandidateJob {
	return domain.CandidateJob{
		ID:        id,
		Title:     title,
		Company:   company,
		Score:     score,
		CreatedAt: "2026-09-01T00:00:00Z",
	}
}

func ok(jobs ...domain.CandidateJob) func(context.Context) types.Result {
	return func(context.Context) types.Result {
		return types.Result{
			Success:       true,
			JobsFound:     len(jobs) + 1,
			JobsProcessed: len(jobs),
			Errors:        []string{},
			Jobs:          jobs,
		}
	}
}

type fixture struct {
	crawlers map[string]*fakeCrawler
	configs  []types.Config
	registry *Registry
}

func newFixture(behaviours map[string]func(context.Context) types.Result, names ...string) *fixture {
	f := &fixture{crawlers: map[string]*fakeCrawler{}, registry: NewRegistry()}
	for _, n := range names {
		f.configs = append(f.configs, types.Config{Name: n, Source: domain.SourceGreenhouse, Enabled: true})
	}
	f.registry.Register(domain.SourceGreenhouse, func(cfg types.Config) (types.Crawler, error) {
		c := &fakeCrawler{cfg: cfg, crawl: behaviours[cfg.Name]}
		f.crawlers[cfg.Name] = c
		return c, nil
	})
	return f
}

func (f *fixture) manager(opts ...ManagerOption) *Manager {
	opts = append([]ManagerOption{WithDelay(0)}, opts...)
	return NewManager(f.configs, f.registry, opts...)
}

func TestRunAllIsolatesPanickingCrawler(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{
		"first":  ok(job("a", "Go Engineer", "Acme", 80)),
		"second": func(context.Context) types.Result { panic("boom") },
		"third":  ok(job("b", "Designer", "Globex", 70)),
	}, "first", "second", "third")

	s := f.manager().RunAll(t.Context())

	assert.Equal(t, 3, s.TotalCrawlers)
	assert.Equal(t, 2, s.SuccessfulCrawlers)
	assert.Equal(t, []string{"Failed to run crawler second: boom"}, s.Errors)
	require.Len(t, s.FinalJobs, 2)
	assert.Equal(t, "a", s.FinalJobs[0].ID)
	assert.Equal(t, "b", s.FinalJobs[1].ID)
	require.Len(t, s.Results, 2)
	assert.Equal(t, "first", s.Results[0].CrawlerName)
	assert.Equal(t, "third", s.Results[1].CrawlerName)
	assert.Regexp(t, `^session-\d+$`, s.SessionID)
}

func TestRunAllDedupsAndRanks(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{
		"gh": ok(
			job("1", "Go Engineer", "Acme", 50),
			job("2", "Designer", "Globex", 90),
		),
		"lever": ok(
			job("3", " go engineer ", "ACME", 75),
			job("4", "Go Engineer", "Acme", 75),
		),
	}, "gh", "lever")

	s := f.manager().RunAll(t.Context())

	assert.Equal(t, 4, s.TotalJobsProcessed)
	assert.Equal(t, 6, s.TotalJobsFound)
	assert.Equal(t, 2, s.DuplicatesRemoved)
	assert.Equal(t, s.TotalJobsProcessed-len(s.FinalJobs), s.DuplicatesRemoved)
	ids := []string{}
	for _, j := range s.FinalJobs {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []string{"2", "3"}, ids)
}

func TestRunAllPrefixesCrawlerErrorsAndSkipsFailedJobs(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{
		"down": func(context.Context) types.Result {
			return types.Result{Errors: []string{"Page 1 failed: HTTP 503: Service Unavailable"}, Jobs: []domain.CandidateJob{}}
		},
		"up": ok(job("x", "Go Engineer", "Acme", 60)),
	}, "down", "up")

	s := f.manager().RunAll(t.Context())

	assert.Equal(t, []string{"down: Page 1 failed: HTTP 503: Service Unavailable"}, s.Errors)
	assert.Equal(t, 1, s.SuccessfulCrawlers)
	assert.Len(t, s.FinalJobs, 1)
}

func TestRunAllWaitsBetweenCrawlers(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{
		"a": ok(), "b": ok(), "c": ok(),
	}, "a", "b", "c")
	m := f.manager(WithDelay(2 * time.Second))
	var slept []time.Duration
	m.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	m.RunAll(t.Context())

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, slept)
}

func TestRunAllStopsWhenContextEnds(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{
		"a": ok(job("1", "Go Engineer", "Acme", 60)), "b": ok(),
	}, "a", "b")
	m := f.manager()
	m.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	s := m.RunAll(t.Context())

	assert.Equal(t, []string{"session stopped before b: context canceled"}, s.Errors)
	assert.Len(t, s.FinalJobs, 1)
	assert.Equal(t, 0, f.crawlers["b"].Calls())
}

func TestRunSpecific(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{
		"gh":    ok(job("1", "Go Engineer", "Acme", 60)),
		"panic": func(context.Context) types.Result { panic(errors.New("bad record")) },
	}, "gh", "panic")
	m := f.manager()

	assert.Nil(t, m.RunSpecific(t.Context(), "missing"))

	res := m.RunSpecific(t.Context(), "gh")
	require.NotNil(t, res)
	assert.Equal(t, 1, res.JobsProcessed)

	res = m.RunSpecific(t.Context(), "panic")
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Failed to run crawler panic: bad record"}, res.Errors)
}

func TestRunSpecificWaitsForSession(t *testing.T) {
	var inside, peak atomic.Int32
	release := make(chan struct{})
	f := newFixture(map[string]func(context.Context) types.Result{
		"gh": func(context.Context) types.Result {
			n := inside.Add(1)
			defer inside.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			return ok(job("1", "Go Engineer", "Acme", 60))(context.Background())
		},
	}, "gh")
	m := f.manager()

	session := make(chan *SessionResult, 1)
	go func() { session <- m.RunAll(context.Background()) }()
	require.Eventually(t, func() bool { return f.crawlers["gh"].Calls() == 1 }, 5*time.Second, time.Millisecond)

	single := make(chan *types.Result, 1)
	go func() { single <- m.RunSpecific(context.Background(), "gh") }()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.crawlers["gh"].Calls(), "RunSpecific started during a session")
	close(release)

	s := <-session
	res := <-single
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.Len(t, s.FinalJobs, 1)
	assert.Equal(t, 2, f.crawlers["gh"].Calls())
	assert.EqualValues(t, 1, peak.Load())
}

func TestRunSpecificGivesUpWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(map[string]func(context.Context) types.Result{
		"gh": func(context.Context) types.Result {
			<-release
			return ok()(context.Background())
		},
	}, "gh")
	m := f.manager()

	session := make(chan *SessionResult, 1)
	go func() { session <- m.RunAll(context.Background()) }()
	require.Eventually(t, func() bool { return f.crawlers["gh"].Calls() == 1 }, 5*time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := m.RunSpecific(ctx, "gh")

	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Failed to run crawler gh: context deadline exceeded"}, res.Errors)
	close(release)
	<-session
	assert.Equal(t, 1, f.crawlers["gh"].Calls())
}

func TestUnknownSourceIsSkipped(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{"gh": ok()}, "gh")
	f.configs = append(f.configs, types.Config{Name: "Ashby Co", Source: domain.SourceAshby, Enabled: true})
	m := f.manager()

	assert.Equal(t, []string{"gh"}, m.Active())
	stats := m.Stats(t.Context())
	require.Len(t, stats, 2)
	assert.Equal(t, "Ashby Co", stats[1].Name)
	assert.True(t, stats[1].Enabled)

	s := m.RunAll(t.Context())
	assert.Equal(t, 1, s.TotalCrawlers)
}

func TestEnableDisable(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{"a": ok(), "b": ok()}, "a", "b")
	f.configs[1].Enabled = false
	hub := events.NewHub()
	sub := hub.Subscribe()
	m := f.manager(WithEvents(hub))

	assert.Equal(t, []string{"a"}, m.Active())
	assert.Nil(t, m.RunSpecific(t.Context(), "b"))

	require.True(t, m.Enable("b"))
	assert.Equal(t, []string{"a", "b"}, m.Active())
	assert.Contains(t, <-sub, events.CrawlerEnabled)

	require.True(t, m.Disable("a"))
	assert.Equal(t, []string{"b"}, m.Active())
	assert.Contains(t, <-sub, events.CrawlerDisabled)

	assert.False(t, m.Enable("nope"))
	assert.False(t, m.Disable("nope"))

	stats := m.Stats(t.Context())
	assert.False(t, stats[0].Enabled)
	assert.True(t, stats[1].Enabled)
}

func TestDisableCancelsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	f := newFixture(map[string]func(context.Context) types.Result{
		"slow": func(ctx context.Context) types.Result {
			close(started)
			<-ctx.Done()
			return types.Result{Errors: []string{"Page 1 failed: " + ctx.Err().Error()}, Jobs: []domain.CandidateJob{}}
		},
	}, "slow")
	m := f.manager()

	done := make(chan *types.Result, 1)
	go func() { done <- m.RunSpecific(context.Background(), "slow") }()

	<-started
	assert.True(t, m.Stats(t.Context())[0].Running)
	require.True(t, m.Disable("slow"))

	select {
	case res := <-done:
		require.NotNil(t, res)
		assert.False(t, res.Success)
		assert.Equal(t, []string{"Page 1 failed: context canceled"}, res.Errors)
	case <-time.After(5 * time.Second):
		t.Fatal("disabled crawler kept running")
	}
	assert.False(t, m.Stats(t.Context())[0].Running)
}

func TestStatsReportLastRun(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{"a": ok(), "b": ok()}, "a", "b")
	at := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	rec := history.NewMemory()
	m := f.manager(WithHistory(rec), WithClock(func() time.Time { return at }))

	m.RunSpecific(t.Context(), "a")

	stats := m.Stats(t.Context())
	require.NotNil(t, stats[0].LastRun)
	assert.True(t, stats[0].LastRun.Equal(at))
	assert.Nil(t, stats[1].LastRun)

	last, found, err := rec.Last(t.Context(), "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, last.Success)
}

func TestConcurrentRunAllShareSession(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(map[string]func(context.Context) types.Result{
		"a": func(context.Context) types.Result {
			<-release
			return ok()(context.Background())
		},
	}, "a")
	m := f.manager()

	results := make(chan *SessionResult, 2)
	go func() { results <- m.RunAll(context.Background()) }()
	require.Eventually(t, func() bool { return f.crawlers["a"].Calls() == 1 }, 5*time.Second, time.Millisecond)
	go func() { results <- m.RunAll(context.Background()) }()

	time.Sleep(100 * time.Millisecond)
	close(release)

	first, second := <-results, <-results
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, f.crawlers["a"].Calls())
}

func TestSessionHook(t *testing.T) {
	f := newFixture(map[string]func(context.Context) types.Result{
		"a": ok(job("1", "Go Engineer", "Acme", 60), job("2", "Go Engineer", "Acme", 50)),
	}, "a")
	var got *SessionResult
	m := f.manager(WithSessionHook(func(s *SessionResult) { got = s }))

	s := m.RunAll(t.Context())

	require.NotNil(t, got)
	assert.Same(t, s, got)
	assert.Equal(t, 1, got.DuplicatesRemoved)
}
