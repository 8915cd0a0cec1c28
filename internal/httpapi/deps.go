package httpapi

import (
	"net/http"
	"sync/atomic"

	"remotejobs-crawler/internal/config"
	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/poll"
	"remotejobs-crawler/internal/store"

	"go.uber.org/zap"
)

type Deps struct {
	Manager *poll.Manager
	Poller  *poll.Poller
	Store   store.JobStore

	Hub *events.Hub
	Log *zap.Logger

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}
