// Package export renders filtered records as a CSV download.
package export

import (
	"encoding/csv"
	"io"

	"leadcollector-engine/internal/domain"
)

const (
	Filename    = "linkedin_extractions_filtered.csv"
	ContentType = "text/csv"
)

// Header is the fixed column order of every export.
var Header = []string{
	"Type",
	"First Name",
	"Last Name",
	"Job Title",
	"Company Name",
	"Location",
	"Industry",
	"Domain",
	"Employee Size",
	"Headquarters",
	"LinkedIn URL",
	"Extraction Date",
}

func Row(r domain.Record) []string {
	return []string{
		string(r.Type),
		r.FirstName,
		r.LastName,
		r.JobTitle,
		r.CompanyName,
		r.Location,
		r.Industry,
		r.Domain,
		r.EmployeeSize,
		r.Headquarters,
		r.URL,
		r.Timestamp,
	}
}

// WriteCSV writes the header followed by one line per record.
func WriteCSV(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ContentDisposition() string {
	return "attachment; filename=" + Filename
}
