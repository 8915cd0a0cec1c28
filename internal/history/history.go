package history

import (
	"context"
	"errors"
	"time"
)

var ErrUnknownDriver = errors.New("history: unknown driver")

// Run is the outcome of one crawler invocation.
type Run struct {
	Crawler       string    `json:"crawler"`
	SessionID     string    `json:"sessionId,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Success       bool      `json:"success"`
	JobsFound     int       `json:"jobsFound"`
	JobsProcessed int       `json:"jobsProcessed"`
	Errors        []string  `json:"errors,omitempty"`
}

// Recorder keeps the most recent runs per crawler.
type Recorder interface {
	Record(ctx context.Context, run Run) error
	Last(ctx context.Context, crawler string) (Run, bool, error)
	Recent(ctx context.Context, crawler string, n int) ([]Run, error)
}

// Keep bounds how many runs are retained per crawler.
const Keep = 50
