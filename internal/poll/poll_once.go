package poll

import (
	"context"
	"time"

	"remotejobs-crawler/internal/events"
	"remotejobs-crawler/internal/store"

	"go.uber.org/zap"
)

// PollOnce runs every enabled crawler and stores the session's jobs as pending.
// A store failure is returned alongside the session, which is still valid.
func PollOnce(ctx context.Context, m *Manager, st store.JobStore, pub events.Publisher, log *zap.Logger) (*SessionResult, int, error) {
	s := m.RunAll(ctx)

	// persisting should not be cut short by the caller going away
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
	defer cancel()

	added, err := Persist(pctx, st, s.FinalJobs)
	if err != nil {
		log.Error("persist crawled jobs", zap.String("session", s.SessionID), zap.Error(err))
		return s, 0, err
	}
	if added > 0 {
		events.Emit(pub, events.JobsPersisted, map[string]any{"sessionId": s.SessionID, "added": added})
	}
	log.Info("poll ok", zap.String("session", s.SessionID), zap.Int("added", added))
	return s, added, nil
}
