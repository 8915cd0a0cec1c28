package httpapi

import (
	"net/http"

	"remotejobs-crawler/internal/poll"
)

type HealthHandler struct {
	Manager *poll.Manager
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":       true,
		"crawlers": len(h.Manager.Active()),
	})
}
