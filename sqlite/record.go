package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/sitepush"
)

// Compile-time interface verification.
var _ sitepush.RecordService = (*RecordService)(nil)

// RecordService implements sitepush.RecordService using SQLite.
type RecordService struct {
	db *DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db}
}

// UpsertRecord creates or overwrites the record for (URL, Source).
func (s *RecordService) UpsertRecord(ctx context.Context, rec *sitepush.URLRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO url_records (url, source, success, attempted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url, source) DO UPDATE SET
			success = excluded.success,
			attempted_at = excluded.attempted_at
	`, rec.URL, rec.Source, rec.Success, formatTime(rec.LastAttemptAt))

	return err
}

// FindRecords retrieves records matching the filter.
func (s *RecordService) FindRecords(ctx context.Context, filter sitepush.RecordFilter) ([]*sitepush.URLRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT url, source, success, attempted_at FROM url_records WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}
	if filter.Success != nil {
		query.WriteString(" AND success = ?")
		args = append(args, *filter.Success)
	}
	if filter.AttemptedAfter != nil {
		query.WriteString(" AND attempted_at > ?")
		args = append(args, formatTime(*filter.AttemptedAfter))
	}

	query.WriteString(" ORDER BY url ASC, source ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*sitepush.URLRecord
	for rows.Next() {
		var rec sitepush.URLRecord
		var attemptedAt string

		if err := rows.Scan(&rec.URL, &rec.Source, &rec.Success, &attemptedAt); err != nil {
			return nil, err
		}

		var err error
		if rec.LastAttemptAt, err = parseRFC3339(attemptedAt, "attempted_at"); err != nil {
			return nil, err
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}
