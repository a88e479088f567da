// Package ingest validates and cleans payloads posted by the browser extension.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"leadcollector-engine/internal/domain"
)

// Sentinels the extension writes when a field could not be scraped.
const (
	EmailPlaceholder = "Check Contact Info Section (Usually hidden)"
	AboutPlaceholder = "N/A"
)

// Payload keys.
const (
	KeyURL          = "url"
	KeyEmail        = "email"
	KeyAboutSummary = "aboutSummary"
	KeyFirstName    = "firstName"
	KeyLastName     = "lastName"
	KeyJobTitle     = "jobTitle"
	KeyCompanyName  = "companyName"
	KeyLocation     = "location"
	KeyIndustry     = "industry"
	KeyDomain       = "domain"
	KeyEmployeeSize = "employeeSize"
	KeyHeadquarters = "headquarters"
	KeyTimestamp    = "timestamp"
)

// Normalize turns a raw payload into a Record ready for upsert.
// The payload map is modified in place: placeholder fields are removed.
func Normalize(payload map[string]any) (domain.Record, error) {
	if len(payload) == 0 {
		return domain.Record{}, domain.Invalid("No data received")
	}
	url, _ := payload[KeyURL].(string)
	if url == "" {
		return domain.Record{}, domain.Invalid("URL is missing")
	}

	if s, ok := payload[KeyEmail].(string); ok && s == EmailPlaceholder {
		delete(payload, KeyEmail)
	}
	if s, ok := payload[KeyAboutSummary].(string); ok && s == AboutPlaceholder {
		delete(payload, KeyAboutSummary)
	}

	full, err := json.Marshal(payload)
	if err != nil {
		return domain.Record{}, domain.Invalid("payload is not serializable: %v", err)
	}

	return domain.Record{
		URL:          url,
		Type:         DeriveType(payload),
		FirstName:    field(payload, KeyFirstName),
		LastName:     field(payload, KeyLastName),
		JobTitle:     field(payload, KeyJobTitle),
		CompanyName:  field(payload, KeyCompanyName),
		Location:     field(payload, KeyLocation),
		Industry:     field(payload, KeyIndustry),
		Domain:       field(payload, KeyDomain),
		EmployeeSize: field(payload, KeyEmployeeSize),
		Headquarters: field(payload, KeyHeadquarters),
		Timestamp:    rawField(payload, KeyTimestamp),
		FullData:     full,
	}, nil
}

// DeriveType reports Prospect for person pages. Only person pages carry a
// firstName key, even when its value is null.
func DeriveType(payload map[string]any) domain.RecordType {
	if _, ok := payload[KeyFirstName]; ok {
		return domain.TypeProspect
	}
	return domain.TypeCompany
}

func field(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return stringify(v)
}

// rawField keeps the value as sent; timestamps are compared as strings.
func rawField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return stringify(v)
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
