package domain

import "encoding/json"

type RecordType string

const (
	TypeProspect RecordType = "Prospect"
	TypeCompany  RecordType = "Company"
)

// Record is one ingested page, keyed by its source URL.
// The flattened columns exist for filtering and export; FullData is the
// cleaned payload exactly as it is handed back by /find and /api/all.
type Record struct {
	URL          string
	Type         RecordType
	FirstName    string
	LastName     string
	JobTitle     string
	CompanyName  string
	Location     string
	Industry     string
	Domain       string
	EmployeeSize string
	Headquarters string
	Timestamp    string
	FullData     json.RawMessage
}

// RecordEntry is the listing shape returned by /api/all.
type RecordEntry struct {
	URL       string          `json:"url"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
