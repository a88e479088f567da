package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"leadcollector-engine/internal/domain"
	"leadcollector-engine/internal/filter"
)

// UpsertRecord inserts r or replaces every column of the row sharing its URL.
// The conflict clause runs as part of the single INSERT statement.
func (d *DB) UpsertRecord(ctx context.Context, r domain.Record) error {
	if r.URL == "" {
		return domain.Invalid("URL is missing")
	}
	if len(r.FullData) == 0 {
		return domain.Invalid("full data is missing")
	}

	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO records (
  url, type, first_name, last_name, job_title, company_name,
  location, industry, domain, employee_size, headquarters,
  timestamp, full_data
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
  type = excluded.type,
  first_name = excluded.first_name,
  last_name = excluded.last_name,
  job_title = excluded.job_title,
  company_name = excluded.company_name,
  location = excluded.location,
  industry = excluded.industry,
  domain = excluded.domain,
  employee_size = excluded.employee_size,
  headquarters = excluded.headquarters,
  timestamp = excluded.timestamp,
  full_data = excluded.full_data;
`,
		r.URL,
		string(r.Type),
		nullable(r.FirstName),
		nullable(r.LastName),
		nullable(r.JobTitle),
		nullable(r.CompanyName),
		nullable(r.Location),
		nullable(r.Industry),
		nullable(r.Domain),
		nullable(r.EmployeeSize),
		nullable(r.Headquarters),
		nullable(r.Timestamp),
		string(r.FullData),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// FindRecord returns the stored document for an exact URL match.
func (d *DB) FindRecord(ctx context.Context, url string) (json.RawMessage, error) {
	if url == "" {
		return nil, domain.Invalid("URL parameter required")
	}

	var doc string
	err := d.Pool.QueryRowContext(ctx,
		`SELECT full_data FROM records WHERE url = ? LIMIT 1;`, url,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return json.RawMessage(doc), nil
}

// ListRecords returns url/type/timestamp/document for every record matching f,
// newest timestamp first. The empty Filters lists everything.
func (d *DB) ListRecords(ctx context.Context, f filter.Filters) ([]domain.RecordEntry, error) {
	where, args := f.Where()
	rows, err := d.Pool.QueryContext(ctx, `
SELECT url, type, COALESCE(timestamp, ''), full_data
FROM records
`+where+`
ORDER BY timestamp DESC;`, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []domain.RecordEntry{}
	for rows.Next() {
		var (
			e   domain.RecordEntry
			doc string
		)
		if err := rows.Scan(&e.URL, &e.Type, &e.Timestamp, &doc); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(doc)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryRecords returns the flattened columns of every record matching f,
// newest timestamp first. FullData is left empty.
func (d *DB) QueryRecords(ctx context.Context, f filter.Filters) ([]domain.Record, error) {
	where, args := f.Where()
	rows, err := d.Pool.QueryContext(ctx, `
SELECT type,
  COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(job_title, ''),
  COALESCE(company_name, ''), COALESCE(location, ''), COALESCE(industry, ''),
  COALESCE(domain, ''), COALESCE(employee_size, ''), COALESCE(headquarters, ''),
  url, COALESCE(timestamp, '')
FROM records
`+where+`
ORDER BY timestamp DESC;`, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var (
			r   domain.Record
			typ string
		)
		if err := rows.Scan(
			&typ,
			&r.FirstName,
			&r.LastName,
			&r.JobTitle,
			&r.CompanyName,
			&r.Location,
			&r.Industry,
			&r.Domain,
			&r.EmployeeSize,
			&r.Headquarters,
			&r.URL,
			&r.Timestamp,
		); err != nil {
			return nil, err
		}
		r.Type = domain.RecordType(typ)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM records;`).Scan(&n)
	return n, err
}
