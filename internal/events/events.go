package events

import (
	"encoding/json"
	"time"

	"leadcollector-engine/internal/domain"
)

const (
	KindPing         = "ping"
	KindRecordStored = "record_stored"
)

// Notice is the JSON payload of one SSE message. Dashboards reload their
// table when a record_stored notice arrives.
type Notice struct {
	Type      string        `json:"type"`
	At        time.Time     `json:"at"`
	RequestID string        `json:"request_id,omitempty"`
	Record    *StoredRecord `json:"record,omitempty"`
}

type StoredRecord struct {
	URL  string            `json:"url"`
	Type domain.RecordType `json:"type"`
}

// Ping is sent once when a subscriber connects.
func Ping(requestID string) Notice {
	return Notice{Type: KindPing, At: time.Now().UTC(), RequestID: requestID}
}

func RecordStored(requestID string, rec domain.Record) Notice {
	return Notice{
		Type:      KindRecordStored,
		At:        time.Now().UTC(),
		RequestID: requestID,
		Record:    &StoredRecord{URL: rec.URL, Type: rec.Type},
	}
}

// Encode renders n for an SSE data line. Notice holds only plain values,
// so marshalling cannot fail.
func (n Notice) Encode() string {
	b, _ := json.Marshal(n)
	return string(b)
}
