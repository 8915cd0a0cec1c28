package httpapi

import "net/http"

// NewMux returns the raw mux; Handler wraps it with the standard middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Crawlers
	crh := CrawlersHandler{
		Manager: d.Manager,
		Poller:  d.Poller,
		Store:   d.Store,
		Hub:     d.Hub,
		Log:     d.Log,
	}
	mux.HandleFunc("/crawlers", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  crh.List,
		http.MethodPost: crh.Trigger,
	}))
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: crh.Status,
	}))

	// Jobs
	jh := JobsHandler{Store: d.Store}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{Manager: d.Manager}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics)
	}
	return mux
}

func Handler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, Cors, Recover(d.Log), AccessLog(d.Log))
}
