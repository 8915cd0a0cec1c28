package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	require.Equal(t, 2, h.Subscribers())

	Emit(h, CrawlerEnabled, map[string]string{"crawler": "GitLab"})

	for _, ch := range []chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		assert.Equal(t, CrawlerEnabled, e.Type)
		assert.Equal(t, 1, e.Version)
		assert.JSONEq(t, `{"crawler":"GitLab"}`, string(e.Data))
	}

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Subscribers())
	_, open := <-a
	assert.False(t, open)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for range 40 {
		h.Publish("x")
	}
	assert.Len(t, ch, 16)
}

func TestEmitNilPublisher(t *testing.T) {
	assert.NotPanics(t, func() { Emit(nil, CrawlerDisabled, nil) })

	var h *Hub
	assert.NotPanics(t, func() { Emit(h, CrawlerDisabled, nil) })
	assert.NotPanics(t, func() { EmitRequest(h, "req-1", JobsPersisted, map[string]int{"added": 1}) })
}

func TestEmitRequestCarriesID(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	EmitRequest(h, "req-7", JobsPersisted, map[string]int{"added": 2})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
	assert.Equal(t, "req-7", e.RequestID)
	assert.Equal(t, JobsPersisted, e.Type)
}
