package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/poll"
	"remotejobs-crawler/internal/store"

	"go.uber.org/zap"
)

type CrawlersHandler struct {
	Manager *poll.Manager
	Poller  *poll.Poller
	Store   store.JobStore
	Hub     *events.Hub
	Log     *zap.Logger
}

func (h CrawlersHandler) List(w http.ResponseWriter, r *http.Request) {
	stats := h.Manager.Stats(r.Context())
	enabled := 0
	for _, s := range stats {
		if s.Enabled {
			enabled++
		}
	}
	writeJSON(w, map[string]any{
		"success":         true,
		"crawlers":        stats,
		"totalCrawlers":   len(stats),
		"enabledCrawlers": enabled,
	})
}

func (h CrawlersHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	req.CrawlerName = strings.TrimSpace(req.CrawlerName)

	switch req.Action {
	case ActionRunAll:
		h.runAll(w, r)
	case ActionRunSpecific:
		h.runSpecific(w, r, req.CrawlerName)
	case ActionEnable, ActionDisable:
		h.toggle(w, r, req)
	default:
		WriteError(w, r, http.StatusBadRequest, "invalid_action",
			"Invalid action. Use: run_all, run_specific, enable_crawler, disable_crawler")
	}
}

func (h CrawlersHandler) runAll(w http.ResponseWriter, r *http.Request) {
	session, _, err := h.Poller.Run(r.Context())
	resp := map[string]any{
		"success": true,
		"message": fmt.Sprintf("Crawling completed. %d new jobs collected.", len(session.FinalJobs)),
		"result":  session,
	}
	if err != nil {
		// PollOnce has logged it
		resp["persistError"] = err.Error()
	}
	writeJSON(w, resp)
}

func (h CrawlersHandler) runSpecific(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_crawler",
			"crawlerName is required for run_specific action")
		return
	}
	res := h.Manager.RunSpecific(r.Context(), name)
	if res == nil {
		WriteError(w, r, http.StatusNotFound, "crawler_not_found", "Crawler not found")
		return
	}

	resp := map[string]any{
		"success": true,
		"message": fmt.Sprintf("%d jobs collected from %s", res.JobsProcessed, name),
		"result":  res,
	}
	added, err := poll.Persist(r.Context(), h.Store, res.Jobs)
	switch {
	case err != nil:
		h.logger().Error("persist failed", zap.String("crawler", name), zap.Error(err))
		resp["persistError"] = err.Error()
	case added > 0:
		events.EmitRequest(h.Hub, RequestIDFrom(r.Context()), events.JobsPersisted,
			map[string]any{"crawler": name, "added": added})
	}
	writeJSON(w, resp)
}

func (h CrawlersHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func (h CrawlersHandler) toggle(w http.ResponseWriter, r *http.Request, req TriggerRequest) {
	if req.CrawlerName == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_crawler", "crawlerName is required")
		return
	}

	var found bool
	verb := "enabled"
	if req.Action == ActionEnable {
		found = h.Manager.Enable(req.CrawlerName)
	} else {
		found = h.Manager.Disable(req.CrawlerName)
		verb = "disabled"
	}
	if !found {
		WriteError(w, r, http.StatusNotFound, "crawler_not_found", "Crawler not found")
		return
	}
	writeJSON(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Crawler %s %s", req.CrawlerName, verb),
	})
}

func (h CrawlersHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Poller.Status())
}
