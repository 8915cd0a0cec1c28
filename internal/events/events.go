package events

import (
	"encoding/json"
	"time"
)

const (
	CrawlSessionCompleted = "crawl_session_completed"
	CrawlerCompleted      = "crawler_completed"
	CrawlerEnabled        = "crawler_enabled"
	CrawlerDisabled       = "crawler_disabled"
	JobsPersisted         = "jobs_persisted"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Publisher is the write side of a Hub.
type Publisher interface {
	Publish(evt string)
}

// Emit publishes a version 1 event when p is non-nil.
func Emit(p Publisher, typ string, data any) {
	EmitRequest(p, "", typ, data)
}

// EmitRequest is Emit tagged with the request that caused the event.
func EmitRequest(p Publisher, reqID, typ string, data any) {
	if p == nil {
		return
	}
	p.Publish(MakeEvent(reqID, typ, 1, data))
}
