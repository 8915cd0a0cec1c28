package poll

import (
	"context"
	"sync/atomic"
	"time"

	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/store"

	"go.uber.org/zap"
)

type Status struct {
	Running     bool   `json:"running"`
	LastRunAt   string `json:"lastRunAt,omitempty"`
	LastOkAt    string `json:"lastOkAt,omitempty"`
	LastError   string `json:"lastError,omitempty"`
	LastAdded   int    `json:"lastAdded"`
	LastSession string `json:"lastSession,omitempty"`
}

// Poller wraps PollOnce with the status the API and scheduler report.
type Poller struct {
	Manager *Manager
	Store   store.JobStore
	Events  events.Publisher
	Log     *zap.Logger

	status atomic.Value // Status
}

func (p *Poller) Status() Status {
	if st, ok := p.status.Load().(Status); ok {
		return st
	}
	return Status{}
}

func (p *Poller) Run(ctx context.Context) (*SessionResult, int, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	st := p.Status()
	st.Running = true
	st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	p.status.Store(st)

	s, added, err := PollOnce(ctx, p.Manager, p.Store, p.Events, log.Named("poll"))

	st = p.Status()
	st.Running = false
	st.LastAdded = added
	st.LastSession = s.SessionID
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
	}
	p.status.Store(st)
	return s, added, err
}
