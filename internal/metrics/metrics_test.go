package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCrawlObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCrawl(reg)

	m.PageFetched("GitLab", 120*time.Millisecond, nil)
	m.PageFetched("GitLab", time.Second, errors.New("HTTP 500"))
	m.RecordsScored("GitLab", 3, 2, 1)
	m.SessionCompleted(10, 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues("GitLab", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues("GitLab", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("GitLab", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("GitLab", "rejected")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.SessionJobs))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Duplicates))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PageDuration))
}
