package history

import (
	"context"
	"sync"
)

type Memory struct {
	mu   sync.RWMutex
	runs map[string][]Run // newest first
}

func NewMemory() *Memory {
	return &Memory{runs: map[string][]Run{}}
}

func (m *Memory) Record(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := append([]Run{run}, m.runs[run.Crawler]...)
	if len(runs) > Keep {
		runs = runs[:Keep]
	}
	m.runs[run.Crawler] = runs
	return nil
}

func (m *Memory) Last(_ context.Context, crawler string) (Run, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := m.runs[crawler]
	if len(runs) == 0 {
		return Run{}, false, nil
	}
	return runs[0], true, nil
}

func (m *Memory) Recent(_ context.Context, crawler string, n int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := m.runs[crawler]
	if n <= 0 || n > len(runs) {
		n = len(runs)
	}
	out := make([]Run, n)
	copy(out, runs[:n])
	return out, nil
}
