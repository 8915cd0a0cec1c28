package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"remotejobs-crawler/internal/config"
	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/poll"
	"remotejobs-crawler/internal/scrape/types"
	"remotejobs-crawler/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCrawler struct {
	cfg  types.Config
	jobs []domain.CandidateJob
}

func (s stubCrawler) Name() string         { return s.cfg.Name }
func (s stubCrawler) Config() types.Config { return s.cfg }

func (s stubCrawler) Crawl(context.Context) types.Result {
	return types.Result{
		Success:       true,
		JobsFound:     len(s.jobs),
		JobsProcessed: len(s.jobs),
		Errors:        []string{},
		Jobs:          s.jobs,
	}
}

type server struct {
	h     http.Handler
	store store.JobStore
	cfg   *atomic.Value
	path  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	return newServerWith(t, nil, events.NewHub())
}

// newServerWith uses st in place of the default file store when non-nil.
func newServerWith(t *testing.T, st store.JobStore, hub *events.Hub) *server {
	t.Helper()
	reg := poll.NewRegistry()
	reg.Register(domain.SourceGreenhouse, func(cfg types.Config) (types.Crawler, error) {
		return stubCrawler{cfg: cfg, jobs: []domain.CandidateJob{{
			ID:       "greenhouse-" + cfg.Name,
			Title:    "Go Engineer",
			Company:  "Acme",
			ApplyURL: "https://acme.example/" + cfg.Name,
			Score:    70,
		}}}, nil
	})
	configs := []types.Config{
		{Name: "alpha", Source: domain.SourceGreenhouse, Enabled: true},
		{Name: "beta", Source: domain.SourceGreenhouse, Enabled: false},
	}
	m := poll.NewManager(configs, reg, poll.WithDelay(0), poll.WithEvents(hub))

	dir := t.TempDir()
	if st == nil {
		st = store.NewFile(filepath.Join(dir, "jobs.json"))
	}
	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, config.SaveAtomic(cfgPath, config.Defaults()))
	cfgVal := &atomic.Value{}
	cfgVal.Store(config.Defaults())

	d := Deps{
		Manager:     m,
		Poller:      &poll.Poller{Manager: m, Store: st, Events: hub},
		Store:       st,
		Hub:         hub,
		Log:         zap.NewNop(),
		CfgVal:      cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
	}
	return &server{h: Handler(d), store: st, cfg: cfgVal, path: cfgPath}
}

func (s *server) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func errMessage(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", body)
	return e["message"].(string)
}

func TestListCrawlers(t *testing.T) {
	s := newServer(t)

	rec, body := s.do(t, http.MethodGet, "/crawlers", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["totalCrawlers"])
	assert.EqualValues(t, 1, body["enabledCrawlers"])
	crawlers := body["crawlers"].([]any)
	require.Len(t, crawlers, 2)
	assert.Equal(t, "alpha", crawlers[0].(map[string]any)["name"])
}

func TestTriggerValidation(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"invalid action", `{"action":"explode"}`, http.StatusBadRequest,
			"Invalid action. Use: run_all, run_specific, enable_crawler, disable_crawler"},
		{"run_specific without name", `{"action":"run_specific"}`, http.StatusBadRequest,
			"crawlerName is required for run_specific action"},
		{"run_specific unknown", `{"action":"run_specific","crawlerName":"gamma"}`, http.StatusNotFound,
			"Crawler not found"},
		{"enable without name", `{"action":"enable_crawler","crawlerName":"  "}`, http.StatusBadRequest,
			"crawlerName is required"},
		{"disable unknown", `{"action":"disable_crawler","crawlerName":"gamma"}`, http.StatusNotFound,
			"Crawler not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPost, "/crawlers", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, errMessage(t, body))
		})
	}
}

func TestTriggerRejectsBadJSON(t *testing.T) {
	s := newServer(t)

	rec, body := s.do(t, http.MethodPost, "/crawlers", `{"action":"run_all","extra":1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", body["error"].(map[string]any)["code"])
}

func TestRunAllPersists(t *testing.T) {
	s := newServer(t)

	rec, body := s.do(t, http.MethodPost, "/crawlers", `{"action":"run_all"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Crawling completed. 1 new jobs collected.", body["message"])

	stored, err := s.store.ReadJobs(t.Context())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "greenhouse-alpha", stored[0].ID)
	assert.Equal(t, domain.StatusPending, stored[0].Status)

	rec, body = s.do(t, http.MethodGet, "/scrape/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["lastAdded"])
}

func TestRunSpecificAndToggle(t *testing.T) {
	s := newServer(t)

	rec, body := s.do(t, http.MethodPost, "/crawlers", `{"action":"enable_crawler","crawlerName":"beta"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Crawler beta enabled", body["message"])

	rec, body = s.do(t, http.MethodPost, "/crawlers", `{"action":"run_specific","crawlerName":"beta"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1 jobs collected from beta", body["message"])

	rec, body = s.do(t, http.MethodPost, "/crawlers", `{"action":"disable_crawler","crawlerName":"alpha"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Crawler alpha disabled", body["message"])

	rec, body = s.do(t, http.MethodGet, "/jobs?status=pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])
	job := body["jobs"].([]any)[0].(map[string]any)
	assert.Equal(t, "greenhouse-beta", job["id"])
}

func TestJobsRejectsBadQuery(t *testing.T) {
	s := newServer(t)

	rec, body := s.do(t, http.MethodGet, "/jobs?min_score=high", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "min_score must be an integer", errMessage(t, body))
}

func TestJobsFilterByTags(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.store.WriteJobs(t.Context(), []domain.JobRecord{
		{CandidateJob: domain.CandidateJob{ID: "a", Title: "Go Engineer", Company: "Acme", Tags: []string{"golang", "backend"}}},
		{CandidateJob: domain.CandidateJob{ID: "b", Title: "Designer", Company: "Acme", Tags: []string{"figma"}}},
		{CandidateJob: domain.CandidateJob{ID: "c", Title: "Go SRE", Company: "Acme", Tags: []string{"golang"}}},
	}))

	rec, body := s.do(t, http.MethodGet, "/jobs?tags=Golang,%20Backend", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, "a", body["jobs"].([]any)[0].(map[string]any)["id"])

	_, body = s.do(t, http.MethodGet, "/jobs?tags=golang", "")
	assert.EqualValues(t, 2, body["total"])
}

type failingStore struct{}

func (failingStore) ReadJobs(context.Context) ([]domain.JobRecord, error) {
	return nil, errors.New("disk gone")
}

func (failingStore) WriteJobs(context.Context, []domain.JobRecord) error { return nil }

func TestRunReturnsResultWhenSaveFails(t *testing.T) {
	s := newServerWith(t, failingStore{}, nil)

	rec, body := s.do(t, http.MethodPost, "/crawlers", `{"action":"run_all"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Crawling completed. 1 new jobs collected.", body["message"])
	assert.Contains(t, body["persistError"], "disk gone")
	session := body["result"].(map[string]any)
	assert.Len(t, session["finalJobs"], 1)

	rec, body = s.do(t, http.MethodPost, "/crawlers", `{"action":"run_specific","crawlerName":"alpha"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1 jobs collected from alpha", body["message"])
	assert.Contains(t, body["persistError"], "disk gone")
	assert.EqualValues(t, 1, body["result"].(map[string]any)["jobsProcessed"])
}

func TestRunSpecificWithoutHub(t *testing.T) {
	s := newServerWith(t, nil, nil)

	rec, body := s.do(t, http.MethodPost, "/crawlers", `{"action":"run_specific","crawlerName":"alpha"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["persistError"])
	stored, err := s.store.ReadJobs(t.Context())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newServer(t)

	rec, body := s.do(t, http.MethodDelete, "/crawlers", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", body["error"].(map[string]any)["code"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec, _ = s.do(t, http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestConfigPutValidates(t *testing.T) {
	s := newServer(t)

	rec, _ := s.do(t, http.MethodPut, "/config", `{"Unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cfg := config.Defaults()
	cfg.App.LogLevel = "debug"
	b, err := json.Marshal(cfg)
	require.NoError(t, err)

	rec, _ = s.do(t, http.MethodPut, "/config", string(b))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "debug", s.cfg.Load().(config.Config).App.LogLevel)

	saved, err := config.Load(s.path)
	require.NoError(t, err)
	assert.Equal(t, "debug", saved.App.LogLevel)
}

func TestRecoverMiddleware(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID, Recover(zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
}
