// Package filter turns the dashboard's optional filter parameters into a
// parameterized SQL predicate over the records table.
package filter

import (
	"encoding/json"
	"net/url"
	"strings"
)

// TypeAll is the dashboard's "no type filter" sentinel.
const TypeAll = "All"

// Filters is the parsed form of the listing/export query string.
// Zero values impose no constraint.
type Filters struct {
	Type       string   `json:"type,omitempty"`
	Titles     []string `json:"title,omitempty"`
	Company    string   `json:"company,omitempty"`
	Locations  []string `json:"location,omitempty"`
	Industries []string `json:"industry,omitempty"`
	Domains    []string `json:"domain,omitempty"`
	Sizes      []string `json:"size,omitempty"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
}

func Parse(q url.Values) Filters {
	return Filters{
		Type:       strings.TrimSpace(q.Get("type")),
		Titles:     splitList(q.Get("title")),
		Company:    strings.TrimSpace(q.Get("company")),
		Locations:  splitList(q.Get("location")),
		Industries: splitList(q.Get("industry")),
		Domains:    splitList(q.Get("domain")),
		Sizes:      splitList(q.Get("size")),
		StartDate:  strings.TrimSpace(q.Get("start_date")),
		EndDate:    strings.TrimSpace(q.Get("end_date")),
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Describe renders the active filters for the activity log.
func (f Filters) Describe() string {
	b, _ := json.Marshal(f)
	return "Filters: " + string(b)
}

// Where builds the predicate for f. where is empty when nothing is filtered.
func (f Filters) Where() (where string, args []any) {
	var b Builder
	if f.Type != "" && f.Type != TypeAll {
		b.Eq(ColType, f.Type)
	}
	b.In(ColJobTitle, f.Titles)
	if f.Company != "" {
		b.Contains(ColCompanyName, f.Company)
	}
	b.In(ColLocation, f.Locations, ColHeadquarters)
	b.In(ColIndustry, f.Industries)
	b.In(ColDomain, f.Domains)
	b.In(ColEmployeeSize, f.Sizes)
	if f.StartDate != "" {
		b.DateOnOrAfter(ColTimestamp, f.StartDate)
	}
	if f.EndDate != "" {
		b.DateOnOrBefore(ColTimestamp, f.EndDate)
	}
	return b.Build()
}
